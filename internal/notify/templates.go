package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var templates = template.Must(template.New("notify").
	Funcs(template.FuncMap{"statusMessage": statusMessage}).
	Parse(`
{{define "order-confirmation"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Encomenda #{{.OrderID}} confirmada</h2>
<p>Olá {{.CustomerName}},</p>
<p>Recebemos o seu pagamento de <strong>€{{.Total.StringFixed 2}}</strong>. A sua massa de pastel está a ser preparada.</p>
{{if .TrackingNumber}}<p>Número de seguimento CTT: <a href="{{.TrackingURL}}">{{.TrackingNumber}}</a></p>{{end}}
</div>{{end}}

{{define "owner-alert"}}<div style="font-family: Arial, sans-serif;">
<h2>Nova encomenda #{{.OrderID}}</h2>
<ul>
<li>Cliente: {{.CustomerName}} &lt;{{.CustomerEmail}}&gt;</li>
{{if .CustomerPhone}}<li>Telefone: {{.CustomerPhone}}</li>{{end}}
{{if .Quantity}}<li>Quantidade: {{.Quantity}}</li>{{end}}
<li>Total: €{{.Total.StringFixed 2}}</li>
{{if .TrackingNumber}}<li>Seguimento: {{.TrackingNumber}}</li>{{end}}
</ul>
</div>{{end}}

{{define "status-update"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Encomenda #{{.OrderID}}</h2>
<p>Olá {{.CustomerName}},</p>
<p>{{statusMessage .Status}}</p>
<p><strong>Estado:</strong> {{.Status}}</p>
{{if .TrackingNumber}}<p><a href="{{.TrackingURL}}">Seguir encomenda {{.TrackingNumber}}</a></p>{{end}}
</div>{{end}}
`))

var statusMessages = map[string]string{
	"processing": "A sua encomenda está a ser preparada.",
	"shipped":    "A sua encomenda foi enviada.",
	"delivered":  "A sua encomenda foi entregue. Bom apetite!",
	"cancelled":  "A sua encomenda foi cancelada.",
}

func statusMessage(status string) string {
	if m, ok := statusMessages[status]; ok {
		return m
	}
	return "A sua encomenda foi atualizada."
}

var subjects = map[Kind]string{
	KindOrderConfirmation: "Encomenda #%d confirmada",
	KindOwnerAlert:        "Nova encomenda #%d",
	KindStatusUpdate:      "Atualização da encomenda #%d",
}

func render(n OrderNotice) (subject, html string, err error) {
	format, ok := subjects[n.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notice kind %q", n.Kind)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(n.Kind), n); err != nil {
		return "", "", fmt.Errorf("render %s: %w", n.Kind, err)
	}
	return fmt.Sprintf(format, n.OrderID), buf.String(), nil
}
