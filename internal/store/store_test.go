package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-backend/internal/apperr"
	"billing-backend/internal/db"
	"billing-backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	s := New(database, Options{InvoicePrefix: "FACT", DueDays: 14})
	s.now = func() time.Time { return time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC) }
	return s
}

func dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func mustClient(t *testing.T, s *Store, name string) *models.Client {
	t.Helper()
	client, err := s.CreateClient(context.Background(), ClientInput{Name: name})
	if err != nil {
		t.Fatalf("CreateClient(%q): %v", name, err)
	}
	return client
}

func mustMethod(t *testing.T, s *Store, name string, billingType models.BillingType, rate string) *models.TreatmentMethod {
	t.Helper()
	method, err := s.CreateMethod(context.Background(), MethodInput{Name: name, BillingType: billingType, Rate: dec(rate)})
	if err != nil {
		t.Fatalf("CreateMethod(%q): %v", name, err)
	}
	return method
}

func mustTreatment(t *testing.T, s *Store, client *models.Client, method *models.TreatmentMethod, date models.Date, duration *decimal.Decimal) *models.Treatment {
	t.Helper()
	treatment, err := s.CreateTreatment(context.Background(), TreatmentInput{
		ClientID:          client.ID,
		TreatmentMethodID: method.ID,
		TreatmentDate:     date,
		DurationHours:     duration,
	})
	if err != nil {
		t.Fatalf("CreateTreatment: %v", err)
	}
	return treatment
}

func draftFor(client *models.Client, treatments ...*models.Treatment) InvoiceDraft {
	draft := InvoiceDraft{ClientID: client.ID}
	for _, treatment := range treatments {
		draft.Lines = append(draft.Lines, models.InvoiceLine{
			TreatmentID:   treatment.ID,
			TreatmentDate: treatment.TreatmentDate,
			Description:   "line",
			BillingType:   models.BillingSession,
			Quantity:      decimal.NewFromInt(1),
			UnitRate:      decimal.NewFromInt(50),
			Amount:        decimal.NewFromInt(50),
		})
	}
	return draft
}

func TestCreateClientValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   ClientInput
		wantErr error
	}{
		{name: "valid", input: ClientInput{Name: "  Janssen ", Email: "J@Example.com"}},
		{name: "empty name", input: ClientInput{Name: "   "}, wantErr: apperr.ErrValidation},
		{name: "bad email", input: ClientInput{Name: "Peters", Email: "not-an-email"}, wantErr: apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := s.CreateClient(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateClient() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateClient() error: %v", err)
			}
			if client.Name != "Janssen" || client.Email != "j@example.com" {
				t.Errorf("client not normalized: %+v", client)
			}
		})
	}
}

func TestClientNameFrozenOnceReferenced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")

	renamed, err := s.UpdateClient(ctx, client.ID, ClientInput{Name: "Jansen"})
	if err != nil {
		t.Fatalf("rename before treatments: %v", err)
	}
	if renamed.Name != "Jansen" {
		t.Fatalf("name = %q, want Jansen", renamed.Name)
	}

	mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), nil)

	if _, err := s.UpdateClient(ctx, client.ID, ClientInput{Name: "Someone Else"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("rename after treatments: error = %v, want conflict", err)
	}

	updated, err := s.UpdateClient(ctx, client.ID, ClientInput{Name: "Jansen", Email: "new@example.com", Phone: "0612345678"})
	if err != nil {
		t.Fatalf("contact update: %v", err)
	}
	if updated.Email != "new@example.com" || updated.Phone != "0612345678" {
		t.Errorf("contact details not saved: %+v", updated)
	}
}

func TestDeleteClient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")

	free := mustClient(t, s, "Free")
	if err := s.DeleteClient(ctx, free.ID); err != nil {
		t.Fatalf("DeleteClient() error: %v", err)
	}
	if _, err := s.GetClient(ctx, free.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("GetClient() after delete error = %v, want not found", err)
	}

	busy := mustClient(t, s, "Busy")
	mustTreatment(t, s, busy, method, models.NewDate(2025, 3, 1), nil)
	if err := s.DeleteClient(ctx, busy.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("DeleteClient() error = %v, want conflict", err)
	}

	if err := s.DeleteClient(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("DeleteClient(unknown) error = %v, want not found", err)
	}
}

func TestListClientsOrderedByName(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"Peters", "Bakker", "Janssen"} {
		mustClient(t, s, name)
	}

	clients, err := s.ListClients(context.Background())
	if err != nil {
		t.Fatalf("ListClients() error: %v", err)
	}
	var names []string
	for _, client := range clients {
		names = append(names, client.Name)
	}
	want := []string{"Bakker", "Janssen", "Peters"}
	for i := range want {
		if i >= len(names) || names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestCreateMethodValidation(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name  string
		input MethodInput
	}{
		{"missing name", MethodInput{BillingType: models.BillingHourly, Rate: dec("10")}},
		{"missing rate", MethodInput{Name: "Massage", BillingType: models.BillingHourly}},
		{"unknown type", MethodInput{Name: "Massage", BillingType: "daily", Rate: dec("10")}},
		{"negative rate", MethodInput{Name: "Massage", BillingType: models.BillingSession, Rate: dec("-1")}},
		{"rate with three decimals", MethodInput{Name: "Massage", BillingType: models.BillingHourly, Rate: dec("80.125")}},
		{"rate beyond the money column", MethodInput{Name: "Massage", BillingType: models.BillingHourly, Rate: dec("99999999999")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateMethod(context.Background(), tt.input); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("CreateMethod() error = %v, want validation", err)
			}
		})
	}
}

func TestUpdateMethodBillingType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Fysio", models.BillingHourly, "80")

	repriced, err := s.UpdateMethod(ctx, method.ID, MethodInput{Name: "Fysio", BillingType: models.BillingHourly, Rate: dec("85")})
	if err != nil {
		t.Fatalf("rate change: %v", err)
	}
	if !repriced.Rate.Equal(decimal.NewFromInt(85)) {
		t.Errorf("rate = %s, want 85", repriced.Rate)
	}

	treatment := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), dec("1"))

	_, err = s.UpdateMethod(ctx, method.ID, MethodInput{Name: "Fysio", BillingType: models.BillingSession, Rate: dec("85")})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("billing type change with unbilled treatment: error = %v, want conflict", err)
	}

	if _, err := s.CommitInvoice(ctx, draftFor(client, treatment)); err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}
	if _, err := s.UpdateMethod(ctx, method.ID, MethodInput{Name: "Fysio", BillingType: models.BillingSession, Rate: dec("85")}); err != nil {
		t.Fatalf("billing type change once billed: %v", err)
	}
}

func TestDeleteMethodIsSoft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")
	mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), nil)

	if err := s.DeleteMethod(ctx, method.ID); err != nil {
		t.Fatalf("DeleteMethod() error: %v", err)
	}
	if _, err := s.GetMethod(ctx, method.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("GetMethod() after delete error = %v, want not found", err)
	}
	if err := s.DeleteMethod(ctx, method.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second DeleteMethod() error = %v, want not found", err)
	}

	live, err := s.MethodsByID(ctx, []uuid.UUID{method.ID})
	if err != nil {
		t.Fatalf("MethodsByID() error: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("deleted method still resolved: %v", live)
	}

	views, err := s.ListTreatments(ctx, TreatmentFilter{})
	if err != nil {
		t.Fatalf("ListTreatments() error: %v", err)
	}
	if len(views) != 1 || views[0].MethodName != "Massage" || views[0].ClientName != "Janssen" {
		t.Errorf("treatment view lost its names: %+v", views)
	}
}

func TestCreateTreatment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	hourly := mustMethod(t, s, "Fysio", models.BillingHourly, "80")
	session := mustMethod(t, s, "Massage", models.BillingSession, "50")
	date := models.NewDate(2025, 3, 1)

	tests := []struct {
		name    string
		input   TreatmentInput
		wantErr error
	}{
		{"hourly with duration", TreatmentInput{ClientID: client.ID, TreatmentMethodID: hourly.ID, TreatmentDate: date, DurationHours: dec("1.5")}, nil},
		{"session without duration", TreatmentInput{ClientID: client.ID, TreatmentMethodID: session.ID, TreatmentDate: date}, nil},
		{"hourly without duration", TreatmentInput{ClientID: client.ID, TreatmentMethodID: hourly.ID, TreatmentDate: date}, apperr.ErrValidation},
		{"session with duration", TreatmentInput{ClientID: client.ID, TreatmentMethodID: session.ID, TreatmentDate: date, DurationHours: dec("1")}, apperr.ErrValidation},
		{"zero duration", TreatmentInput{ClientID: client.ID, TreatmentMethodID: hourly.ID, TreatmentDate: date, DurationHours: dec("0")}, apperr.ErrValidation},
		{"duration with three decimals", TreatmentInput{ClientID: client.ID, TreatmentMethodID: hourly.ID, TreatmentDate: date, DurationHours: dec("2.555")}, apperr.ErrValidation},
		{"duration beyond the column", TreatmentInput{ClientID: client.ID, TreatmentMethodID: hourly.ID, TreatmentDate: date, DurationHours: dec("10000")}, apperr.ErrValidation},
		{"missing date", TreatmentInput{ClientID: client.ID, TreatmentMethodID: session.ID}, apperr.ErrValidation},
		{"unknown client", TreatmentInput{ClientID: uuid.New(), TreatmentMethodID: session.ID, TreatmentDate: date}, apperr.ErrNotFound},
		{"unknown method", TreatmentInput{ClientID: client.ID, TreatmentMethodID: uuid.New(), TreatmentDate: date}, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			treatment, err := s.CreateTreatment(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateTreatment() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTreatment() error: %v", err)
			}
			if treatment.IsBilled {
				t.Errorf("new treatment must start unbilled")
			}
		})
	}

	views, err := s.ListTreatments(ctx, TreatmentFilter{})
	if err != nil {
		t.Fatalf("ListTreatments() error: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("rejected treatments were persisted: got %d rows", len(views))
	}
}

func TestCreateTreatmentReportsBillingTypeFirst(t *testing.T) {
	s := newTestStore(t)
	client := mustClient(t, s, "Janssen")
	session := mustMethod(t, s, "Massage", models.BillingSession, "50")

	_, err := s.CreateTreatment(context.Background(), TreatmentInput{
		ClientID:          client.ID,
		TreatmentMethodID: session.ID,
		TreatmentDate:     models.NewDate(2025, 3, 1),
		DurationHours:     dec("0"),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("CreateTreatment() error = %v, want validation", err)
	}
	if msg := apperr.Message(err); !strings.Contains(msg, "must be empty for session method") {
		t.Errorf("message = %q, want the session method reason", msg)
	}
}

func TestCreateMethodKeepsExactRate(t *testing.T) {
	s := newTestStore(t)
	method := mustMethod(t, s, "Fysio", models.BillingHourly, "80.10")

	stored, err := s.GetMethod(context.Background(), method.ID)
	if err != nil {
		t.Fatalf("GetMethod() error: %v", err)
	}
	if !stored.Rate.Equal(method.Rate) {
		t.Errorf("stored rate = %s, returned %s", stored.Rate, method.Rate)
	}
}

func TestDeleteClientRacingTreatment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")

	for i := 0; i < 10; i++ {
		client := mustClient(t, s, fmt.Sprintf("Client %d", i))

		var wg sync.WaitGroup
		var deleteErr, createErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			deleteErr = s.DeleteClient(ctx, client.ID)
		}()
		go func() {
			defer wg.Done()
			_, createErr = s.CreateTreatment(ctx, TreatmentInput{
				ClientID:          client.ID,
				TreatmentMethodID: method.ID,
				TreatmentDate:     models.NewDate(2025, 3, 1),
			})
		}()
		wg.Wait()

		views, err := s.ListTreatments(ctx, TreatmentFilter{ClientID: &client.ID})
		if err != nil {
			t.Fatalf("ListTreatments() error: %v", err)
		}
		_, getErr := s.GetClient(ctx, client.ID)

		switch {
		case deleteErr == nil:
			if !errors.Is(createErr, apperr.ErrNotFound) || len(views) != 0 || !errors.Is(getErr, apperr.ErrNotFound) {
				t.Fatalf("delete won but create = %v, treatments = %d, client = %v", createErr, len(views), getErr)
			}
		case errors.Is(deleteErr, apperr.ErrConflict):
			if createErr != nil || len(views) != 1 || getErr != nil {
				t.Fatalf("create won but create = %v, treatments = %d, client = %v", createErr, len(views), getErr)
			}
		default:
			t.Fatalf("DeleteClient() error = %v", deleteErr)
		}
	}
}

func TestListEligible(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")

	february := mustTreatment(t, s, client, method, models.NewDate(2025, 2, 20), nil)
	march := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 5), nil)
	billed := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 6), nil)
	if _, err := s.CommitInvoice(ctx, draftFor(client, billed)); err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}

	all, err := s.ListEligible(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListEligible() error: %v", err)
	}
	if len(all) != 2 || all[0].ID != february.ID || all[1].ID != march.ID {
		t.Fatalf("ListEligible(nil, nil) = %v", all)
	}

	from, to := models.NewDate(2025, 3, 1), models.NewDate(2025, 3, 31)
	inMarch, err := s.ListEligible(ctx, &from, &to)
	if err != nil {
		t.Fatalf("ListEligible() error: %v", err)
	}
	if len(inMarch) != 1 || inMarch[0].ID != march.ID {
		t.Fatalf("ListEligible(march) = %v", inMarch)
	}
}

func TestDeleteTreatment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")

	open := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), nil)
	if err := s.DeleteTreatment(ctx, open.ID); err != nil {
		t.Fatalf("DeleteTreatment() error: %v", err)
	}

	billed := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 2), nil)
	if _, err := s.CommitInvoice(ctx, draftFor(client, billed)); err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}
	if err := s.DeleteTreatment(ctx, billed.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("DeleteTreatment(billed) error = %v, want conflict", err)
	}
	if err := s.DeleteTreatment(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("DeleteTreatment(unknown) error = %v, want not found", err)
	}
}

func TestCommitInvoice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")
	first := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), nil)
	second := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 8), nil)

	result, err := s.CommitInvoice(ctx, draftFor(client, first, second))
	if err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}
	invoice := result.Invoice
	if invoice == nil {
		t.Fatalf("CommitInvoice() created no invoice")
	}
	if invoice.InvoiceNumber != "FACT-2025-001" {
		t.Errorf("invoice number = %s, want FACT-2025-001", invoice.InvoiceNumber)
	}
	if !invoice.TotalAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s, want 100", invoice.TotalAmount)
	}
	if invoice.DueDate.String() != "2025-04-16" {
		t.Errorf("due date = %s, want 2025-04-16", invoice.DueDate)
	}

	stored, err := s.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice() error: %v", err)
	}
	if len(stored.Lines) != 2 || stored.Lines[0].Position != 1 || stored.Lines[1].Position != 2 {
		t.Errorf("stored lines = %+v", stored.Lines)
	}
	if stored.ClientName != "Janssen" {
		t.Errorf("client name = %q", stored.ClientName)
	}

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		treatment, err := s.GetTreatment(ctx, id)
		if err != nil {
			t.Fatalf("GetTreatment() error: %v", err)
		}
		if !treatment.IsBilled || treatment.InvoiceID == nil || *treatment.InvoiceID != invoice.ID {
			t.Errorf("treatment %s not claimed by invoice: %+v", id, treatment)
		}
	}
}

func TestCommitInvoiceSkipsClaimedTreatments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")
	first := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), nil)
	second := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 8), nil)

	if _, err := s.CommitInvoice(ctx, draftFor(client, first)); err != nil {
		t.Fatalf("first CommitInvoice() error: %v", err)
	}

	result, err := s.CommitInvoice(ctx, draftFor(client, first, second))
	if err != nil {
		t.Fatalf("second CommitInvoice() error: %v", err)
	}
	if result.Invoice == nil || len(result.Invoice.Lines) != 1 || result.Invoice.Lines[0].TreatmentID != second.ID {
		t.Fatalf("second invoice should only hold the unclaimed treatment: %+v", result.Invoice)
	}
	if !result.Invoice.TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("total = %s, want 50", result.Invoice.TotalAmount)
	}
	if len(result.Conflicted) != 1 || result.Conflicted[0] != first.ID {
		t.Errorf("conflicted = %v, want [%s]", result.Conflicted, first.ID)
	}

	empty, err := s.CommitInvoice(ctx, draftFor(client, first, second))
	if err != nil {
		t.Fatalf("third CommitInvoice() error: %v", err)
	}
	if empty.Invoice != nil {
		t.Errorf("no invoice expected when nothing can be claimed, got %s", empty.Invoice.InvoiceNumber)
	}

	invoices, err := s.ListInvoices(ctx, InvoiceFilter{})
	if err != nil {
		t.Fatalf("ListInvoices() error: %v", err)
	}
	if len(invoices) != 2 {
		t.Errorf("invoices = %d, want 2", len(invoices))
	}
}

func TestCommitInvoiceRejectsOtherClientsTreatment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	janssen := mustClient(t, s, "Janssen")
	peters := mustClient(t, s, "Peters")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")
	treatment := mustTreatment(t, s, peters, method, models.NewDate(2025, 3, 1), nil)

	result, err := s.CommitInvoice(ctx, draftFor(janssen, treatment))
	if err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}
	if result.Invoice != nil {
		t.Fatalf("invoice for janssen must not claim a treatment of peters")
	}
}

func TestInvoiceNumbersPerYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")

	var numbers []string
	for i, invoiceDate := range []models.Date{
		models.NewDate(2025, 1, 31),
		models.NewDate(2025, 2, 28),
		models.NewDate(2026, 1, 31),
	} {
		treatment := mustTreatment(t, s, client, method, models.NewDate(2025, 1, 1+i), nil)
		draft := draftFor(client, treatment)
		draft.InvoiceDate = invoiceDate
		result, err := s.CommitInvoice(ctx, draft)
		if err != nil {
			t.Fatalf("CommitInvoice() error: %v", err)
		}
		numbers = append(numbers, result.Invoice.InvoiceNumber)
	}

	want := []string{"FACT-2025-001", "FACT-2025-002", "FACT-2026-001"}
	for i := range want {
		if numbers[i] != want[i] {
			t.Errorf("numbers = %v, want %v", numbers, want)
			break
		}
	}
}

func TestSetInvoiceStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")
	treatment := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), nil)
	result, err := s.CommitInvoice(ctx, draftFor(client, treatment))
	if err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}
	id := result.Invoice.ID

	paid, err := s.SetInvoiceStatus(ctx, id, models.InvoicePaid)
	if err != nil {
		t.Fatalf("SetInvoiceStatus(paid) error: %v", err)
	}
	if paid.Status != models.InvoicePaid || paid.PaidAt == nil {
		t.Errorf("paid invoice = %+v", paid)
	}

	unpaid, err := s.SetInvoiceStatus(ctx, id, models.InvoiceUnpaid)
	if err != nil {
		t.Fatalf("SetInvoiceStatus(unpaid) error: %v", err)
	}
	if unpaid.Status != models.InvoiceUnpaid || unpaid.PaidAt != nil {
		t.Errorf("unpaid invoice = %+v", unpaid)
	}
	if !unpaid.TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("status change touched the total: %s", unpaid.TotalAmount)
	}

	if _, err := s.SetInvoiceStatus(ctx, id, "cancelled"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("SetInvoiceStatus(cancelled) error = %v, want validation", err)
	}
	if _, err := s.SetInvoiceStatus(ctx, uuid.New(), models.InvoicePaid); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("SetInvoiceStatus(unknown) error = %v, want not found", err)
	}
}

func TestCompanySettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company, err := s.Company(ctx)
	if err != nil {
		t.Fatalf("Company() error: %v", err)
	}
	if company.Currency != "EUR" {
		t.Errorf("default currency = %q, want EUR", company.Currency)
	}

	if _, err := s.SaveCompany(ctx, models.Company{}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("SaveCompany(empty) error = %v, want validation", err)
	}

	saved, err := s.SaveCompany(ctx, models.Company{Name: "Praktijk Zon", IBAN: "NL00BANK0123456789", Currency: "eur"})
	if err != nil {
		t.Fatalf("SaveCompany() error: %v", err)
	}
	if saved.Name != "Praktijk Zon" || saved.IBAN != "NL00BANK0123456789" || saved.Currency != "EUR" {
		t.Errorf("saved company = %+v", saved)
	}

	if _, err := s.SaveCompany(ctx, models.Company{Name: "Praktijk Maan"}); err != nil {
		t.Fatalf("second SaveCompany() error: %v", err)
	}
	again, err := s.Company(ctx)
	if err != nil {
		t.Fatalf("Company() error: %v", err)
	}
	if again.Name != "Praktijk Maan" || again.IBAN != "" {
		t.Errorf("company after overwrite = %+v", again)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "Janssen")
	method := mustMethod(t, s, "Massage", models.BillingSession, "50")
	first := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 1), nil)
	second := mustTreatment(t, s, client, method, models.NewDate(2025, 3, 2), nil)
	mustTreatment(t, s, client, method, models.NewDate(2025, 3, 3), nil)

	paid, err := s.CommitInvoice(ctx, draftFor(client, first))
	if err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}
	if _, err := s.SetInvoiceStatus(ctx, paid.Invoice.ID, models.InvoicePaid); err != nil {
		t.Fatalf("SetInvoiceStatus() error: %v", err)
	}
	if _, err := s.CommitInvoice(ctx, draftFor(client, second)); err != nil {
		t.Fatalf("CommitInvoice() error: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.Clients != 1 || stats.TreatmentMethods != 1 || stats.UnbilledTreatments != 1 || stats.Invoices != 2 {
		t.Errorf("counts = %+v", stats)
	}
	if !stats.PaidAmount.Equal(decimal.NewFromInt(50)) || !stats.OutstandingAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("amounts = paid %s outstanding %s", stats.PaidAmount, stats.OutstandingAmount)
	}
}

func TestRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, period := range []string{"last_month", "2025-03"} {
		if err := s.RecordRun(ctx, &models.GenerationRun{Period: period}); err != nil {
			t.Fatalf("RecordRun() error: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
}
