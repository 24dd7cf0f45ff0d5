package web

import "html/template"

type pageData struct {
	Operations []string
}

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>marksheet</title>
<style>
body { font-family: sans-serif; margin: 2rem; max-width: 60rem; }
fieldset { margin-bottom: 1rem; }
table { border-collapse: collapse; margin-top: 1rem; }
td, th { border: 1px solid #ccc; padding: .25rem .5rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
#error { color: #b00; }
img { margin-top: 1rem; max-width: 100%; }
</style>
</head>
<body>
<h1>marksheet</h1>

<fieldset>
<legend>1. Upload a CSV or Excel file</legend>
<form id="upload"><input type="file" name="file" accept=".csv,.xlsx"> <button>Upload</button></form>
<p id="dataset"></p>
</fieldset>

<fieldset>
<legend>2. Analyse</legend>
<form id="analyze">
<label>Operation <select name="operation">{{range .Operations}}<option>{{.}}</option>{{end}}</select></label>
<label>Columns <input name="columns" placeholder="Maths,Science"></label>
<label>Threshold <input name="threshold" type="number" value="40" step="any"></label>
<label>Name column <input name="nameColumn"></label>
<label>Group <input name="groupColumn"></label>
<label>Column <input name="column"></label>
<label>Rows <input name="rows" placeholder="0,2"></label>
<label>Keys <input name="keys" placeholder="1,3"></label>
<button>Run</button>
<button type="button" id="csv">CSV</button>
<button type="button" id="xlsx">Excel</button>
</form>
</fieldset>

<p id="error"></p>
<h2 id="title"></h2>
<div id="result"></div>
<img id="chart" alt="">

<script>
const $ = (id) => document.getElementById(id);
const list = (s) => s.split(",").map((x) => x.trim()).filter((x) => x);

function request() {
  const f = new FormData($("analyze"));
  const req = { operation: f.get("operation") };
  if (f.get("columns")) req.columns = list(f.get("columns"));
  if (f.get("threshold")) req.threshold = Number(f.get("threshold"));
  for (const k of ["nameColumn", "groupColumn", "column"]) if (f.get(k)) req[k] = f.get(k);
  if (f.get("rows")) req.rows = list(f.get("rows")).map(Number);
  if (f.get("keys")) req.keys = list(f.get("keys"));
  return req;
}

async function post(url, body) {
  const res = await fetch(url, { method: "POST", body: JSON.stringify(body) });
  if (!res.ok) throw new Error((await res.json()).error);
  return res;
}

function render(table) {
  const head = (table.rowLabels ? [table.indexName || "Index"] : []).concat(table.columns);
  let html = "<table><tr>" + head.map((h) => "<th>" + h + "</th>").join("") + "</tr>";
  table.rows.forEach((row, i) => {
    const cells = (table.rowLabels ? [table.rowLabels[i]] : []).concat(
      row.map((c) => (c === null ? "no data" : typeof c === "number" ? Math.round(c * 100) / 100 : c)));
    html += "<tr>" + cells.map((c) => "<td>" + c + "</td>").join("") + "</tr>";
  });
  $("result").innerHTML = html + "</table>";
}

$("upload").onsubmit = async (e) => {
  e.preventDefault();
  $("error").textContent = "";
  const res = await fetch("/api/dataset", { method: "POST", body: new FormData(e.target) });
  const body = await res.json();
  if (!res.ok) { $("error").textContent = body.error; return; }
  $("dataset").textContent = body.name + ": " + body.profile.rows + " rows, numeric columns " + (body.numericColumns || []).join(", ");
};

$("analyze").onsubmit = async (e) => {
  e.preventDefault();
  $("error").textContent = "";
  try {
    const result = await (await post("/api/analyze", request())).json();
    $("title").textContent = result.title;
    render(result.table);
    $("chart").src = "";
    if (result.chart) {
      const png = await (await post("/api/chart/result", request())).blob();
      $("chart").src = URL.createObjectURL(png);
    }
  } catch (err) { $("error").textContent = err.message; }
};

for (const format of ["csv", "xlsx"]) {
  $(format).onclick = async () => {
    try {
      const blob = await (await post("/api/export/" + format, request())).blob();
      const a = document.createElement("a");
      a.href = URL.createObjectURL(blob);
      a.download = request().operation + "." + format;
      a.click();
    } catch (err) { $("error").textContent = err.message; }
  };
}
</script>
</body>
</html>
`))
