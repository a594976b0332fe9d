package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

// Source loads the data printed on a document.
type Source interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Company(ctx context.Context) (models.Company, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// RedisCache stores rendered files in redis. A nil client disables caching.
type RedisCache struct {
	Client *redis.Client
}

func (c RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.Client == nil {
		return nil, false, nil
	}
	data, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Set(ctx, key, data, ttl).Err()
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Service struct {
	Source    Source
	Cache     Cache
	TTL       time.Duration
	renderers map[Format]Renderer
}

func NewService(source Source, cache Cache, ttl time.Duration) *Service {
	return &Service{
		Source: source,
		Cache:  cache,
		TTL:    ttl,
		renderers: map[Format]Renderer{
			FormatPDF:  PDFRenderer{},
			FormatXLSX: XLSXRenderer{},
		},
	}
}

// Render returns the invoice as a file in the requested format. Cached files
// are keyed on everything printed, so a status change or an edited company
// block never serves a stale document.
func (s *Service) Render(ctx context.Context, invoiceID uuid.UUID, format Format) (File, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return File{}, apperr.Validation("unsupported document format %q", format)
	}

	doc, err := s.load(ctx, invoiceID)
	if err != nil {
		return File{}, err
	}

	file := File{Name: FileName(doc.Invoice, renderer), ContentType: renderer.ContentType()}
	key := cacheKey(doc, format)

	if s.Cache != nil && s.TTL > 0 {
		data, hit, err := s.Cache.Get(ctx, key)
		if err != nil {
			slog.Error("Document cache GET failed", "error", err, "invoice", doc.Invoice.InvoiceNumber)
		} else if hit {
			file.Data = data
			return file, nil
		}
	}

	data, err := renderer.Render(doc)
	if err != nil {
		return File{}, err
	}
	file.Data = data

	if s.Cache != nil && s.TTL > 0 {
		if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
			slog.Error("Document cache SET failed", "error", err, "invoice", doc.Invoice.InvoiceNumber)
		}
	}
	return file, nil
}

func (s *Service) load(ctx context.Context, invoiceID uuid.UUID) (Document, error) {
	invoice, err := s.Source.GetInvoice(ctx, invoiceID)
	if err != nil {
		return Document{}, err
	}

	client, err := s.Source.GetClient(ctx, invoice.ClientID)
	if errors.Is(err, apperr.ErrNotFound) {
		client = &models.Client{ID: invoice.ClientID, Name: invoice.ClientName}
	} else if err != nil {
		return Document{}, err
	}

	company, err := s.Source.Company(ctx)
	if err != nil {
		return Document{}, err
	}

	return Document{Invoice: *invoice, Client: *client, Company: company}, nil
}

func cacheKey(doc Document, format Format) string {
	fingerprint := struct {
		Status  models.InvoiceStatus
		Client  models.Client
		Company models.Company
	}{doc.Invoice.Status, doc.Client, doc.Company}

	payload, _ := json.Marshal(fingerprint)
	sum := sha256.Sum256(payload)
	return "invoice-doc:" + doc.Invoice.ID.String() + ":" + string(format) + ":" + hex.EncodeToString(sum[:8])
}
