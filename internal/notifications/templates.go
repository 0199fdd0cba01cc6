package notifications

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

const (
	accessCodeSubject = "Twój kod dostępu do Mamba Services 🐍"
	receiptsSubject   = "Dostęp do kanału Receipts na Discordzie 🐍"
	ticketSubject     = "Twoje zamówienie Obywatel Premium 🐍"
)

var accessCodeTemplate = template.Must(template.New("access_code").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Dziękujemy za zakup! 🐍</h2>
  <p>Twój kod dostępu do generatora:</p>
  <p style="font-size: 24px; font-weight: bold; letter-spacing: 2px; background: #f4f4f4; padding: 12px 16px; border-radius: 6px; display: inline-block;">{{.Code}}</p>
  <p>Użyj go tutaj: <a href="{{.GeneratorLink}}">{{.GeneratorLink}}</a></p>
  <p>Kod jest jednorazowy. Jeśli masz pytania, odpisz na tego maila.</p>
  <p>Pozdrawiamy,<br>Mamba Services</p>
</div>`))

var receiptsTemplate = template.Must(template.New("receipts").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Dziękujemy za zakup! 🐍</h2>
  <p>Twój dostęp do kanału Receipts jest aktywny do <strong>{{.ExpiresAt}}</strong>.</p>
  <p>Aby połączyć konto Discord, wejdź na nasz serwer i użyj komendy:</p>
  <p style="font-size: 18px; font-weight: bold; background: #f4f4f4; padding: 12px 16px; border-radius: 6px; display: inline-block;">/polacz {{.Email}}</p>
  <p>Rola zostanie nadana automatycznie po połączeniu konta.</p>
  <p>Pozdrawiamy,<br>Mamba Services</p>
</div>`))

var ticketTemplate = template.Must(template.New("ticket").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Dziękujemy za zakup! 🐍</h2>
  <p>Twoje zamówienie Obywatel Premium zostało przyjęte.</p>
  <p>Skontaktujemy się z Tobą na ten adres email w ciągu 24 godzin, aby dokończyć realizację zamówienia.</p>
  <p>Jeśli masz pytania, odpisz na tego maila.</p>
  <p>Pozdrawiamy,<br>Mamba Services</p>
</div>`))

func renderAccessCode(code, generatorLink string) (string, error) {
	return render(accessCodeTemplate, map[string]string{
		"Code":          code,
		"GeneratorLink": generatorLink,
	})
}

func renderReceipts(email string, expiresAt time.Time) (string, error) {
	return render(receiptsTemplate, map[string]string{
		"Email":     email,
		"ExpiresAt": expiresAt.Format("02.01.2006"),
	})
}

func renderTicket() (string, error) {
	return render(ticketTemplate, nil)
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
