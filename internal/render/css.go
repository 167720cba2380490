package render

// pageCSS is inlined into the page head; the CSP allows inline styles only.
const pageCSS = `
:root{
  --bg:#ffffff; --fg:#111827; --sub:#6b7280; --line:#e5e7eb;
  --accent:#2563eb; --accent-weak:#e8f0fe; --danger:#b91c1c;
  --radius:12px; --space:16px; --space-sm:10px; --space-lg:22px;
  --container:960px; --shadow:0 8px 24px rgba(0,0,0,.06);
}
@media (prefers-color-scheme: dark){
  :root{
    --bg:#0b0f14; --fg:#e5e7eb; --sub:#9ca3af; --line:#1f2937;
    --accent:#60a5fa; --accent-weak:#0f2744; --danger:#fca5a5;
  }
}
*{box-sizing:border-box;}
body{
  margin:0; background:var(--bg); color:var(--fg); line-height:1.65;
  font-family:ui-sans-serif,system-ui,-apple-system,"Segoe UI",Roboto,"Noto Sans JP","Hiragino Kaku Gothic ProN",Meiryo,sans-serif;
}
body>*{max-width:min(100vw - 24px, var(--container)); margin:0 auto;}
h1,h2{letter-spacing:.02em; margin:var(--space-lg) 0 var(--space);}
h1{font-size:clamp(20px,5vw,28px);} h2{font-size:clamp(18px,4.2vw,22px);}
.err{
  background:#fde8e8; border:1px solid #f5b5b5; color:var(--danger);
  padding:var(--space-sm) var(--space); border-radius:var(--radius);
}
form{
  border:1px solid var(--line); padding:var(--space); border-radius:var(--radius);
  box-shadow:var(--shadow); margin:var(--space-lg) 0;
}
label{display:inline-block; font-size:.95rem; color:var(--sub); margin-bottom:6px;}
textarea{
  width:100%; min-height:9rem; padding:12px; border:1px solid var(--line);
  border-radius:10px; background:var(--bg); color:var(--fg); resize:vertical;
}
.field{margin:.75rem 0;}
input[type="file"]{width:100%; display:block; padding:10px; border:1px dashed var(--line); border-radius:8px;}
button[type="submit"]{
  border:none; padding:12px 18px; border-radius:9999px; background:var(--accent);
  color:#fff; font-weight:600; cursor:pointer; width:100%; margin-top:var(--space);
}
.post{border-bottom:1px solid var(--line); padding:14px 0;}
.meta{color:var(--sub); font-size:.92rem; margin-bottom:6px;}
.content{word-wrap:break-word; overflow-wrap:anywhere;}
.content img{display:block; max-width:100%; height:auto; margin-top:8px; border-radius:10px; border:1px solid var(--line);}
@media (min-width:640px){
  button[type="submit"]{width:auto; padding-inline:20px;}
}
`
