package webui

const formTemplate = `<!DOCTYPE html>
<html>
<head>
<title>Futures Testnet Order Form</title>
<style>
body { font-family: sans-serif; max-width: 560px; margin: 2em auto; }
label { display: block; margin-top: 0.8em; }
input, select { width: 100%; padding: 0.4em; }
button { margin-top: 1.2em; padding: 0.6em 1.4em; }
.error { color: #b00020; margin-top: 1em; }
.result { background: #f4f8f4; border: 1px solid #cde3cd; padding: 1em; margin-top: 1em; }
.mark { color: #555; }
</style>
</head>
<body>
<h1>Futures Testnet Order</h1>
{{if gt .MarkPrice 0.0}}
<p class="mark">Mark price {{.Symbol}}: <strong>{{printf "%.2f" .MarkPrice}}</strong>
(LIMIT defaults: buy {{printf "%.2f" .DefaultBuy}}, sell {{printf "%.2f" .DefaultSell}})</p>
{{end}}

<form method="post" action="/order">
<label>Symbol <input name="symbol" value="{{.Symbol}}" required></label>
<label>Side
<select name="side">
<option value="BUY">BUY</option>
<option value="SELL">SELL</option>
</select>
</label>
<label>Type
<select name="type">
<option value="MARKET">MARKET</option>
<option value="LIMIT">LIMIT</option>
</select>
</label>
<label>Quantity <input name="quantity" type="number" step="any" min="0" required></label>
<label>Price (LIMIT only) <input name="price" type="number" step="any" min="0"></label>
<button type="submit">Place Order</button>
</form>

{{if .Error}}<p class="error">Order failed: {{.Error}}</p>{{end}}

{{if .Result}}
<div class="result">
<h2>Order accepted</h2>
<p>{{.Result.Input.Side}} {{.Result.Input.Type}} {{.Result.Input.Symbol}},
quantity {{.Result.Quantity}}{{if .IsLimit}} @ {{.Result.Price}}{{end}}</p>
<ul>
<li>orderId: {{.Result.Response.OrderID}}</li>
<li>status: {{.Result.Response.Status}}</li>
{{if .Result.Response.ExecutedQty}}<li>executedQty: {{.Result.Response.ExecutedQty}}</li>{{end}}
{{if .Result.Response.AvgPrice}}<li>avgPrice: {{.Result.Response.AvgPrice}}</li>{{end}}
{{if .IsLimit}}<li>price: {{.Result.Response.Price}}</li>{{end}}
</ul>
</div>
{{end}}
</body>
</html>
`
