package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"billing-backend/internal/documents"
	"billing-backend/internal/models"
)

type invoiceSource interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Company(ctx context.Context) (models.Company, error)
}

type invoiceRenderer interface {
	Render(ctx context.Context, invoiceID uuid.UUID, format documents.Format) (documents.File, error)
}

// InvoiceNotifier mails a newly created invoice to its client with the PDF
// attached. Clients without an email address are skipped.
type InvoiceNotifier struct {
	Config    Config
	Source    invoiceSource
	Documents invoiceRenderer
	send      func(Config, Message) error
}

func NewInvoiceNotifier(cfg Config, source invoiceSource, docs invoiceRenderer) *InvoiceNotifier {
	return &InvoiceNotifier{Config: cfg, Source: source, Documents: docs, send: Send}
}

func (n *InvoiceNotifier) NotifyInvoice(ctx context.Context, invoice models.Invoice) error {
	client, err := n.Source.GetClient(ctx, invoice.ClientID)
	if err != nil {
		return err
	}
	if client.Email == "" {
		slog.Info("Client has no email address, invoice not mailed", "invoice", invoice.InvoiceNumber, "client_id", client.ID)
		return nil
	}

	company, err := n.Source.Company(ctx)
	if err != nil {
		return err
	}
	file, err := n.Documents.Render(ctx, invoice.ID, documents.FormatPDF)
	if err != nil {
		return err
	}

	msg := invoiceMessage(client, company, invoice, file)
	if err := n.send(n.Config, msg); err != nil {
		return fmt.Errorf("send invoice %s to %s: %w", invoice.InvoiceNumber, client.Email, err)
	}
	slog.Info("Invoice mailed", "invoice", invoice.InvoiceNumber, "to", client.Email)
	return nil
}

func invoiceMessage(client *models.Client, company models.Company, invoice models.Invoice, file documents.File) Message {
	sender := company.Name
	if sender == "" {
		sender = "us"
	}

	body := fmt.Sprintf("Dear %s,\n\nPlease find attached invoice %s dated %s for a total of %s %s.\nWe kindly ask you to pay before %s.\n",
		client.Name, invoice.InvoiceNumber, invoice.InvoiceDate, company.Currency, invoice.TotalAmount.StringFixed(2), invoice.DueDate)
	if company.IBAN != "" {
		body += fmt.Sprintf("Payment can be made to %s, quoting the invoice number.\n", company.IBAN)
	}
	body += fmt.Sprintf("\nKind regards,\n%s\n", sender)

	subject := "Invoice " + invoice.InvoiceNumber
	if company.Name != "" {
		subject += " from " + company.Name
	}

	return Message{
		To:      client.Email,
		Subject: subject,
		Body:    body,
		Attachments: []Attachment{
			{Name: file.Name, ContentType: file.ContentType, Data: file.Data},
		},
	}
}
