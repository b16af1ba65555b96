// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata" // America/Sao_Paulo on hosts without zoneinfo

	"go.uber.org/zap"

	"vivabem/internal/middleware"
	"vivabem/internal/models"
)

// csvHeader is the first line of the subscriber export.
var csvHeader = []string{"Nome", "E-mail", "Data de Inscrição", "Ativo"}

// shortMonths are the pt-BR abbreviated month names.
var shortMonths = [12]string{
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// SubscriberLister lists newsletter subscribers.
type SubscriberLister interface {
	List(ctx context.Context, activeOnly bool) ([]models.Subscriber, error)
}

// Export serves the newsletter CSV download.
type Export struct {
	subscribers SubscriberLister
	loc         *time.Location
	now         func() time.Time
}

// NewExport creates the export handler. Dates are rendered in
// America/Sao_Paulo, falling back to UTC when the zone is unknown.
func NewExport(subscribers SubscriberLister) *Export {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		zap.S().Warnw("load export time zone failed, using UTC", "error", err)
		loc = time.UTC
	}
	return &Export{subscribers: subscribers, loc: loc, now: time.Now}
}

// NewsletterCSV writes every subscriber as a CSV attachment.
func (e *Export) NewsletterCSV(w http.ResponseWriter, r *http.Request) {
	subs, err := e.subscribers.List(r.Context(), false)
	if err != nil {
		zap.S().Errorw("export subscribers failed",
			"error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("newsletter-inscritos-%s.csv", e.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")

	if err := WriteSubscribersCSV(w, subs, e.loc); err != nil {
		zap.S().Warnw("write subscribers csv failed", "error", err)
	}
}

// WriteSubscribersCSV writes the header and one row per subscriber. Header
// cells are bare; every data cell is double-quoted with embedded quotes
// doubled. Lines are joined by "\n" with no trailing newline.
func WriteSubscribersCSV(w io.Writer, subs []models.Subscriber, loc *time.Location) error {
	lines := make([]string, 0, len(subs)+1)
	lines = append(lines, strings.Join(csvHeader, ","))

	for i := range subs {
		s := &subs[i]
		active := "Não"
		if s.Active {
			active = "Sim"
		}
		cells := []string{s.DisplayName(), s.Email, FormatDatePTBR(s.CreatedAt, loc), active}
		for j, cell := range cells {
			cells[j] = quoteCSV(cell)
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatDatePTBR formats t like "19 de out. de 2026, 14:30".
func FormatDatePTBR(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%02d de %s de %d, %02d:%02d",
		t.Day(), shortMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
