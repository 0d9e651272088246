package web

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>YouTube Video Q&amp;A Assistant</title>
<style>
  *, *::before, *::after { box-sizing: border-box; }
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #0f172a; color: #e2e8f0; margin: 0; display: flex; min-height: 100vh; }
  aside { width: 320px; background: #1e293b; padding: 1.5rem; }
  main { flex: 1; padding: 2rem; max-width: 900px; }
  h1 { margin-top: 0; color: #f8fafc; }
  h2 { font-size: 1.1rem; color: #f8fafc; }
  input[type=text] { width: 100%; padding: 0.5rem; border-radius: 6px; border: 1px solid #334155; background: #0f172a; color: #e2e8f0; margin-bottom: 0.75rem; }
  button { padding: 0.5rem 1rem; border: 0; border-radius: 6px; background: #38bdf8; color: #0f172a; font-weight: 600; cursor: pointer; }
  button.secondary { background: #334155; color: #e2e8f0; }
  .notice { padding: 0.75rem 1rem; border-radius: 8px; margin-bottom: 1rem; }
  .error { background: #7f1d1d; }
  .warning { background: #78350f; }
  .success { background: #14532d; }
  .info { background: #1e3a8a; }
  .entry { border-top: 1px solid #334155; padding: 1rem 0; }
  .answer p:first-child { margin-top: 0.25rem; }
  .meta { color: #94a3b8; font-size: 0.85rem; }
  code, pre { font-family: "SF Mono", "Fira Code", Menlo, monospace; }
</style>
</head>
<body>
<aside>
  <h2>Video Setup</h2>
  <form method="post" action="/video">
    <label for="video">YouTube URL or video ID</label>
    <input type="text" id="video" name="video" value="{{.VideoInput}}" placeholder="https://youtube.com/watch?v=Gfr50f6ZBvo">
    <button type="submit">Process Video</button>
  </form>
  {{if .Status.Ready}}
  <div class="notice success" style="margin-top:1rem">Video ready: {{.Status.VideoID}}<br>
    <span class="meta">{{.Status.Result.Chunks}} chunks, {{.Status.Result.Summaries}} summaries</span></div>
  {{end}}
</aside>
<main>
  <h1>YouTube Video Q&amp;A Assistant</h1>
  <p>Ask questions about any YouTube video with transcripts!</p>
  {{if .APIKeyMissing}}<div class="notice warning">OPENAI_API_KEY not found in environment variables. Please set it to use this app.</div>{{end}}
  {{if .Error}}<div class="notice error">{{.Error}}</div>{{end}}
  {{if .Status.Ready}}
  <h2>Ask Questions</h2>
  {{range .History}}
  <div class="entry">
    <div><strong>Question {{.Number}}:</strong> {{.Question}}</div>
    <div class="answer"><strong>Answer:</strong> {{.Answer}}</div>
    <div class="meta">{{.Category}}</div>
  </div>
  {{end}}
  <form method="post" action="/ask">
    <label for="question">Your question</label>
    <input type="text" id="question" name="question" value="{{.QuestionInput}}" placeholder="What is this video about?">
    <button type="submit">Ask</button>
  </form>
  {{if .History}}
  <form method="post" action="/clear" style="margin-top:1rem">
    <button type="submit" class="secondary">Clear Chat History</button>
  </form>
  {{end}}
  {{else}}
  <div class="notice info">Enter a YouTube video URL or ID and click 'Process Video' to get started.</div>
  {{end}}
</main>
</body>
</html>`))
