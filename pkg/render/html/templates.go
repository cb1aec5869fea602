package html

// ── Page layout ───────────────────────────────────────────────────────────────

const tmplPage = `{{define "page"}}<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.PageCSS}}{{.GraphCSS}}
</style>
</head>
<body>
<header>
  <div class="summary" id="summary">{{range .Summary}}
    <span class="pill">{{.Label}}: <b>{{.Value}}</b></span>{{end}}
  </div>
</header>

<div class="container">
  <div class="sidebar">
    <div class="toolbar">
      <input id="search" placeholder="Search name...">
      <button id="expandAll">Expand</button>
      <button id="collapseAll">Collapse</button>
    </div>
    <div id="tree">{{range .Tree}}
      <div class="tree-node{{if .Selected}} selected{{end}}" data-name="{{.Name}}"><span class="indent" style="width: {{indent .Depth}}px"></span><span class="toggle">{{.Toggle}}</span><span>{{.Label}} <span class="muted">({{.SelfMs}} ms, {{.Activations}} act)</span></span></div>{{end}}
    </div>
  </div>

  <div class="main">
    <div class="tabs">
      <button class="tab active" id="tabTree">Tree</button>
      <button class="tab" id="tabGraph">Graph</button>{{if .Rules}}
      <button class="tab" id="tabRules">Rules</button>{{end}}
    </div>

    <div id="detailPane">{{with .Detail}}
      <h2 id="title">{{.Title}}</h2>
      <div id="meta" class="muted">{{.Meta}}</div>{{else}}
      <h2 id="title">Select a node</h2>
      <div id="meta" class="muted"></div>{{end}}

      <table id="opsTable"{{if not (hasOps .Detail)}} style="display:none;"{{end}}>
        <thead>
          <tr>
            <th>addr</th>
            <th>operator</th>
            <th class="num">activations</th>
            <th class="num">total_active_ms</th>
          </tr>
        </thead>
        <tbody id="opsBody">{{with .Detail}}{{range .Operators}}
          <tr><td><code>{{.Addr}}</code></td><td>{{.OpName}}</td><td class="num">{{.Activations}}</td><td class="num">{{.TotalActiveMs}}</td></tr>{{end}}{{end}}
        </tbody>
      </table>
    </div>

    <div id="graphPane" style="display:none;">
      <div id="graphView">{{.GraphSVG}}</div>
    </div>

    <div id="rulesPane" style="display:none;">{{range .Rules}}
      <div class="rule">
        <h3><code>{{.Text}}</code></h3>
        <div class="muted">root: <code>{{.Root}}</code></div>
        <table>
          <thead><tr><th>fingerprint</th><th>node</th><th>children</th><th>parents</th><th></th></tr></thead>
          <tbody>{{range .Nodes}}
            <tr><td><code>{{.Fingerprint}}</code></td><td>{{if .Node}}{{.Label}} <span class="muted">#{{.Node}}</span>{{else}}<span class="muted">unmapped</span>{{end}}</td><td>{{join .Children}}</td><td>{{join .Parents}}</td><td>{{if .Shared}}<span class="shared">shared</span>{{end}}</td></tr>{{end}}
          </tbody>
        </table>
      </div>{{end}}
    </div>
  </div>
</div>

<script>
const DATA = {{.DataJSON}};
{{.Script}}
</script>
</body>
</html>
{{end}}`

const pageCSS = `
  body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif; margin: 0; }
  header { padding: 12px 16px; border-bottom: 1px solid #ddd; }
  .container { display: flex; height: calc(100vh - 58px); }
  .sidebar { width: 360px; border-right: 1px solid #ddd; padding: 12px; overflow: auto; }
  .main { flex: 1; padding: 12px; overflow: hidden; display: flex; flex-direction: column; gap: 8px; }
  .toolbar { display: flex; gap: 8px; margin-bottom: 8px; }
  .toolbar input { flex: 1; padding: 6px 8px; border: 1px solid #ddd; border-radius: 6px; }
  .toolbar button { padding: 6px 10px; }

  .summary { display: flex; gap: 16px; flex-wrap: wrap; font-size: 14px; color: #333; }
  .pill { padding: 4px 8px; border: 1px solid #ddd; border-radius: 999px; background: #fafafa; }

  .tree-node { cursor: pointer; user-select: none; padding: 2px 4px; border-radius: 4px; }
  .tree-node:hover { background: #f3f3f3; }
  .tree-node.selected { background: #e9f2ff; border: 1px solid #cfe3ff; }
  .indent { display: inline-block; width: 16px; }
  .toggle { display: inline-block; width: 16px; text-align: center; color: #666; }
  .muted { color: #777; font-size: 12px; }
  .shared { padding: 1px 6px; border-radius: 999px; background: #fff4e0; border: 1px solid #f5c77e; font-size: 12px; }

  .tabs { display: flex; gap: 8px; margin-bottom: 8px; }
  .tab { padding: 6px 10px; border: 1px solid #ddd; background: #f8f8f8; border-radius: 6px; cursor: pointer; }
  .tab.active { background: #e9f2ff; border-color: #cfe3ff; }

  #graphPane { flex: 1; display: flex; flex-direction: column; }
  #graphView { flex: 1; width: 100%; height: 100%; min-height: 420px; border: 1px solid #eee; border-radius: 8px; overflow: auto; }
  #rulesPane { overflow: auto; }
  .rule { margin-bottom: 16px; }

  svg { width: 100%; height: 100%; }
  #graphView svg { cursor: grab; }
  #graphView svg:active { cursor: grabbing; }

  table { border-collapse: collapse; width: 100%; margin-top: 8px; }
  th, td { border-bottom: 1px solid #eee; padding: 6px 8px; text-align: left; font-size: 14px; }
  th { position: sticky; top: 0; background: white; border-bottom: 1px solid #ddd; }
  .num { text-align: right; font-variant-numeric: tabular-nums; }
  code { font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size: 13px; }`

// appJS drives the page. The graph markup is rendered server-side; the
// script only tracks selection and the pan/zoom transform.
const appJS = `
const state = {
  expanded: new Set(DATA.roots),
  selected: null,
  search: "",
  view: "tree",
  graph: { tx: 0, ty: 0, scale: 1 },
};

function fmtMs(x) {
  return (Math.round(x * 1000) / 1000).toFixed(3);
}

function escapeHtml(s) {
  return String(s)
    .replaceAll("&", "&amp;")
    .replaceAll("<", "&lt;")
    .replaceAll(">", "&gt;")
    .replaceAll('"', "&quot;")
    .replaceAll("'", "&#39;");
}

function nodeMatches(name, node) {
  if (!state.search) return true;
  const s = state.search.toLowerCase();
  return name.toLowerCase().includes(s) || (node.label || "").toLowerCase().includes(s);
}

function treeParents() {
  const parent = new Map();
  for (const [name, node] of Object.entries(DATA.nodes)) {
    for (const c of node.children) parent.set(c, name);
  }
  return parent;
}

function visibleSet() {
  if (!state.search) return null;
  const parent = treeParents();
  const show = new Set();
  for (const [name, node] of Object.entries(DATA.nodes)) {
    if (!nodeMatches(name, node)) continue;
    let cur = name;
    while (cur && !show.has(cur)) {
      show.add(cur);
      cur = parent.get(cur);
    }
  }
  return show;
}

function renderTree() {
  const root = document.getElementById("tree");
  root.innerHTML = "";
  const show = visibleSet();
  const onPath = new Set();

  function renderSubtree(name, depth) {
    const node = DATA.nodes[name];
    if (!node || onPath.has(name)) return;
    if (show && !show.has(name)) return;

    const isExpanded = state.expanded.has(name);
    const hasKids = node.children && node.children.length > 0;

    const row = document.createElement("div");
    row.className = "tree-node" + (state.selected === name ? " selected" : "");
    row.onclick = () => selectNode(name);

    const indent = document.createElement("span");
    indent.className = "indent";
    indent.style.width = (depth * 16) + "px";
    row.appendChild(indent);

    const toggle = document.createElement("span");
    toggle.className = "toggle";
    toggle.textContent = hasKids ? (isExpanded ? "▾" : "▸") : " ";
    toggle.onclick = (e) => {
      e.stopPropagation();
      if (!hasKids) return;
      if (isExpanded) state.expanded.delete(name);
      else state.expanded.add(name);
      renderTree();
    };
    row.appendChild(toggle);

    const label = document.createElement("span");
    label.innerHTML = escapeHtml(node.label) + ' <span class="muted">(' +
      fmtMs(node.self_total_active_ms) + " ms, " + node.self_activations + " act)</span>";
    row.appendChild(label);
    root.appendChild(row);

    if (hasKids && isExpanded) {
      onPath.add(name);
      for (const c of node.children) renderSubtree(c, depth + 1);
      onPath.delete(name);
    }
  }

  for (const r of DATA.roots) renderSubtree(r, 0);
}

function applyTransform() {
  const viewport = document.getElementById("viewport");
  if (!viewport) return;
  viewport.setAttribute(
    "transform",
    "translate(" + state.graph.tx + " " + state.graph.ty + ") scale(" + state.graph.scale + ")"
  );
}

function markSelected() {
  document.querySelectorAll(".g-node").forEach((g) => {
    g.classList.toggle("selected", g.getAttribute("data-name") === state.selected);
  });
}

function initGraph() {
  const svg = document.getElementById("graphSvg");
  if (!svg) return;

  svg.addEventListener("click", (e) => {
    const g = e.target.closest(".g-node");
    if (!g) return;
    const name = g.getAttribute("data-name");
    if (name) selectNode(name);
  });

  let dragging = false;
  let lastX = 0;
  let lastY = 0;

  svg.addEventListener("pointerdown", (e) => {
    if (e.button !== 0) return;
    dragging = true;
    lastX = e.clientX;
    lastY = e.clientY;
    svg.setPointerCapture(e.pointerId);
  });
  svg.addEventListener("pointermove", (e) => {
    if (!dragging) return;
    const dx = e.clientX - lastX;
    const dy = e.clientY - lastY;
    lastX = e.clientX;
    lastY = e.clientY;
    state.graph.tx += dx / state.graph.scale;
    state.graph.ty += dy / state.graph.scale;
    applyTransform();
  });
  svg.addEventListener("pointerup", () => { dragging = false; });
  svg.addEventListener("pointercancel", () => { dragging = false; });

  svg.addEventListener(
    "wheel",
    (e) => {
      e.preventDefault();
      const oldScale = state.graph.scale;
      let newScale = oldScale * Math.exp(-e.deltaY * 0.001);
      newScale = Math.max(0.2, Math.min(4.0, newScale));
      if (newScale === oldScale) return;

      const pt = svg.createSVGPoint();
      pt.x = e.clientX;
      pt.y = e.clientY;
      const cursor = pt.matrixTransform(svg.getScreenCTM().inverse());

      const k = newScale / oldScale;
      state.graph.tx = state.graph.tx + (cursor.x - state.graph.tx) * (1 - k);
      state.graph.ty = state.graph.ty + (cursor.y - state.graph.ty) * (1 - k);
      state.graph.scale = newScale;
      applyTransform();
    },
    { passive: false }
  );
}

function selectNode(name) {
  const node = DATA.nodes[name];
  if (!node) return;
  state.selected = name;

  document.getElementById("title").textContent = node.label;
  const extra = node.extra_parents && node.extra_parents.length
    ? " extra parents: " + node.extra_parents.join(", ")
    : "";
  document.getElementById("meta").textContent =
    "name: " + name + " | self: " + fmtMs(node.self_total_active_ms) + " ms | activations: " +
    node.self_activations + extra;

  const tbl = document.getElementById("opsTable");
  const body = document.getElementById("opsBody");
  body.innerHTML = "";
  if (!node.operators || node.operators.length === 0) {
    tbl.style.display = "none";
  } else {
    tbl.style.display = "table";
    for (const op of node.operators) {
      const tr = document.createElement("tr");
      tr.innerHTML =
        "<td><code>[" + op.addr.join(", ") + "]</code></td>" +
        "<td>" + escapeHtml(op.op_name) + "</td>" +
        '<td class="num">' + op.activations + "</td>" +
        '<td class="num">' + fmtMs(op.total_active_ms) + "</td>";
      body.appendChild(tr);
    }
  }

  renderTree();
  markSelected();
}

function expandAll() {
  for (const [name, node] of Object.entries(DATA.nodes)) {
    if (node.children && node.children.length) state.expanded.add(name);
  }
  renderTree();
}

function collapseAll() {
  state.expanded.clear();
  renderTree();
}

function showPane(view) {
  state.view = view;
  const panes = { tree: "detailPane", graph: "graphPane", rules: "rulesPane" };
  for (const [v, id] of Object.entries(panes)) {
    const pane = document.getElementById(id);
    if (pane) pane.style.display = v === view ? (v === "graph" ? "flex" : "block") : "none";
    const tab = document.getElementById("tab" + v[0].toUpperCase() + v.slice(1));
    if (tab) tab.classList.toggle("active", v === view);
  }
  if (view === "graph") applyTransform();
}

document.getElementById("search").addEventListener("input", (e) => {
  state.search = e.target.value || "";
  if (state.search) {
    const parent = treeParents();
    for (const name of visibleSet()) {
      const p = parent.get(name);
      if (p) state.expanded.add(p);
    }
  }
  renderTree();
});

document.getElementById("expandAll").onclick = expandAll;
document.getElementById("collapseAll").onclick = collapseAll;
document.getElementById("tabTree").onclick = () => showPane("tree");
document.getElementById("tabGraph").onclick = () => showPane("graph");
if (document.getElementById("tabRules")) {
  document.getElementById("tabRules").onclick = () => showPane("rules");
}

initGraph();
renderTree();
if (DATA.roots.length) selectNode(DATA.roots[0]);
`
