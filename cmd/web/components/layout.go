package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/rubiojr/hackfinder/cmd/web/components/types"
)

const styles = `
:root { --bg:#f8fafc; --surface:#fff; --border:#e2e8f0; --text:#334155; --dim:#64748b; --accent:#0058a3; --mark:#ffdb00; }
* { box-sizing: border-box; }
body { margin:0; font-family: system-ui, sans-serif; background:var(--bg); color:var(--text); }
header { background:var(--accent); color:#fff; padding:1rem 1.5rem; }
header a { color:#fff; text-decoration:none; font-weight:700; font-size:1.25rem; }
main { max-width:860px; margin:0 auto; padding:1.5rem; }
form.search { display:flex; gap:.5rem; margin-bottom:1rem; }
form.search input { flex:1; padding:.6rem .8rem; border:1px solid var(--border); border-radius:6px; font-size:1rem; }
form.search button { padding:.6rem 1rem; border:0; border-radius:6px; background:var(--accent); color:#fff; cursor:pointer; }
.chips { display:flex; flex-wrap:wrap; gap:.4rem; margin:0 0 1rem; padding:0; list-style:none; }
.chips a { display:inline-block; padding:.2rem .6rem; border:1px solid var(--border); border-radius:999px; background:var(--surface); color:var(--text); text-decoration:none; font-size:.85rem; }
.chips a.active { background:var(--accent); color:#fff; }
.card { background:var(--surface); border:1px solid var(--border); border-radius:6px; padding:.9rem 1rem; margin:0 0 1rem; display:flex; gap:1rem; }
.card img { width:120px; height:90px; object-fit:cover; border-radius:4px; }
.card h2 { font-size:1.05rem; margin:0 0 .3rem; }
.card h2 a { color:var(--accent); text-decoration:none; }
.card .meta { color:var(--dim); font-size:.8rem; margin:.1rem 0; }
.card .snippet { margin:.5rem 0; line-height:1.45; }
mark { background:var(--mark); padding:0 .1em; }
.notice { color:var(--dim); font-style:italic; padding:2rem 0; text-align:center; }
.error { color:#b91c1c; margin:0 0 1rem; }
.pager { display:flex; justify-content:space-between; align-items:center; margin:1rem 0; color:var(--dim); font-size:.9rem; }
.pager a { color:var(--accent); }
.toast { position:fixed; bottom:1rem; right:1rem; background:#0f172a; color:#fff; padding:.6rem 1rem; border-radius:6px; display:none; }
footer { text-align:center; color:var(--dim); font-size:.75rem; padding:2rem 0; }
`

// liveScript upgrades the page to a live session when WebSockets are
// available. Without it every link and form still works as a full page
// load.
const liveScript = `
(function () {
  if (!window.WebSocket) return;
  var results = document.getElementById("results");
  var toast = document.getElementById("toast");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/live");
  var ready = false;
  ws.onopen = function () {
    ready = true;
    var p = new URLSearchParams(location.search);
    var page = parseInt(p.get("page") || "1", 10);
    if (p.get("q")) ws.send(JSON.stringify({action: "search", query: p.get("q")}));
    else if (p.get("category")) ws.send(JSON.stringify({action: "category", category: p.get("category")}));
    if (page > 1) ws.pendingPage = page;
  };
  ws.onclose = function () { ready = false; };
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "state") {
      if (msg.html) results.innerHTML = msg.html;
      if (ws.pendingPage && msg.view && !msg.view.loading && msg.view.status) {
        ws.send(JSON.stringify({action: "page", page: ws.pendingPage}));
        ws.pendingPage = 0;
      }
    } else if (msg.type === "error") {
      toast.textContent = msg.error; show();
    } else if (msg.type === "index_updated") {
      toast.textContent = msg.index.imported + " new hacks indexed"; show();
    }
  };
  function show() { toast.style.display = "block"; setTimeout(function () { toast.style.display = "none"; }, 3000); }
  document.addEventListener("submit", function (e) {
    if (!ready || !e.target.matches("form.search")) return;
    e.preventDefault();
    var q = e.target.q.value.trim();
    ws.send(JSON.stringify(q ? {action: "search", query: q} : {action: "clear"}));
    history.replaceState(null, "", q ? "/?q=" + encodeURIComponent(q) : "/");
  });
  document.addEventListener("click", function (e) {
    var a = e.target.closest("a[data-action]");
    if (!ready || !a) return;
    e.preventDefault();
    var msg = {action: a.dataset.action};
    if (a.dataset.category) msg.category = a.dataset.category;
    if (a.dataset.page) msg.page = parseInt(a.dataset.page, 10);
    ws.send(JSON.stringify(msg));
    history.replaceState(null, "", a.getAttribute("href"));
  });
})();
`

// Layout wraps body in the page chrome.
func Layout(data types.PageData, live bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := raw(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`); err != nil {
			return err
		}
		if err := text(w, data.Title); err != nil {
			return err
		}
		if err := raw(w, `</title><style>`, styles, `</style></head><body>`,
			`<header><a href="/">hackfinder</a></header><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if err := raw(w, `</main><footer>hackfinder `); err != nil {
			return err
		}
		if err := text(w, data.Version); err != nil {
			return err
		}
		if err := raw(w, `</footer><div id="toast" class="toast"></div>`); err != nil {
			return err
		}
		if live {
			if err := raw(w, `<script>`, liveScript, `</script>`); err != nil {
				return err
			}
		}
		return raw(w, `</body></html>`)
	})
}
