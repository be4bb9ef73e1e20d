// Package service holds the reservation lifecycle engine: the only code
// path that changes a reservation's status.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-management/internal/metrics"
	"github.com/iliyamo/hotel-management/internal/model"
	q "github.com/iliyamo/hotel-management/internal/queue"
)

// TxBeginner opens transactions.  *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ReservationStore is the subset of repository.ReservationRepo the engine
// needs.  All reads lock the row for the rest of the transaction.
type ReservationStore interface {
	GetStatusTx(ctx context.Context, tx *sql.Tx, id uint64) (model.ReservationStatus, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error)
	SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus) error
}

// InvoiceStore is the subset of repository.InvoiceRepo the engine needs.
type InvoiceStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, inv *model.Invoice) error
	DeleteByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error
}

const (
	opCancel   = "cancel"
	opCheckout = "checkout"
	opMarkPaid = "mark_paid"

	publishTimeout = 3 * time.Second
)

// Lifecycle validates and applies reservation status transitions.  Each
// operation runs in one transaction: the status is read under a row lock,
// the precondition is checked, and the status write plus the invoice side
// effect either both commit or both roll back.  Lifecycle keeps no state
// between calls and is safe for concurrent use.
type Lifecycle struct {
	db           TxBeginner
	reservations ReservationStore
	invoices     InvoiceStore
	publisher    EventPublisher
	metrics      *metrics.Metrics
	log          zerolog.Logger
}

// NewLifecycle wires the engine.  db, reservations and invoices are
// required; a nil publisher drops events and nil metrics records nothing.
func NewLifecycle(db TxBeginner, reservations ReservationStore, invoices InvoiceStore, pub EventPublisher, m *metrics.Metrics, log zerolog.Logger) *Lifecycle {
	if db == nil || reservations == nil || invoices == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Lifecycle{
		db:           db,
		reservations: reservations,
		invoices:     invoices,
		publisher:    pub,
		metrics:      m,
		log:          log.With().Str("component", "lifecycle").Logger(),
	}
}

// transition describes one operation.  check returns the rejection reason
// for a status, or "" when the operation may proceed.
type transition struct {
	op       string
	to       model.ReservationStatus
	needsRow bool
	check    func(from model.ReservationStatus) Reason
	effect   func(ctx context.Context, tx *sql.Tx, res model.Reservation) (string, error)
}

// Cancel moves a pending or paid reservation to canceled and deletes its
// invoice.  Rejections: ErrNotFound, ErrAlreadyCanceled, ErrAlreadyFinished.
func (l *Lifecycle) Cancel(ctx context.Context, id uint64) (model.ReservationStatus, error) {
	return l.apply(ctx, id, transition{
		op: opCancel,
		to: model.StatusCanceled,
		check: terminalReason,
		effect: func(ctx context.Context, tx *sql.Tx, res model.Reservation) (string, error) {
			return "", l.invoices.DeleteByReservationTx(ctx, tx, res.ID)
		},
	})
}

// Checkout moves a paid reservation to finished.  The invoice is kept.
// Any other status is rejected with ErrNotPaid.
func (l *Lifecycle) Checkout(ctx context.Context, id uint64) (model.ReservationStatus, error) {
	return l.apply(ctx, id, transition{
		op: opCheckout,
		to: model.StatusFinished,
		check: func(from model.ReservationStatus) Reason {
			if from != model.StatusPaid {
				return ReasonNotPaid
			}
			return ""
		},
	})
}

// MarkPaid moves a pending reservation to paid and issues its invoice for
// the reservation amount.  It is triggered by the payment consumer or by
// the root account.
func (l *Lifecycle) MarkPaid(ctx context.Context, id uint64) (model.ReservationStatus, error) {
	return l.apply(ctx, id, transition{
		op:       opMarkPaid,
		to:       model.StatusPaid,
		needsRow: true,
		check: func(from model.ReservationStatus) Reason {
			if from == model.StatusPaid {
				return ReasonAlreadyPaid
			}
			return terminalReason(from)
		},
		effect: func(ctx context.Context, tx *sql.Tx, res model.Reservation) (string, error) {
			inv := &model.Invoice{
				ReservationID: res.ID,
				Code:          NewInvoiceCode(),
				Amount:        res.Amount,
				Status:        model.InvoiceIssued,
			}
			if err := l.invoices.CreateTx(ctx, tx, inv); err != nil {
				return "", err
			}
			return inv.Code, nil
		},
	})
}

// terminalReason names the rejection for a reservation that has reached a
// terminal status.  Unknown statuses yield no reason and fail later as
// internal errors.
func terminalReason(from model.ReservationStatus) Reason {
	switch {
	case !from.IsTerminal():
		return ""
	case from == model.StatusCanceled:
		return ReasonAlreadyCanceled
	case from == model.StatusFinished:
		return ReasonAlreadyFinished
	}
	return ""
}

func (l *Lifecycle) apply(ctx context.Context, id uint64, t transition) (model.ReservationStatus, error) {
	start := time.Now()
	from, invoiceCode, err := l.run(ctx, id, t)
	elapsed := time.Since(start)

	if err != nil {
		le, _ := AsLifecycleError(err)
		l.metrics.RecordTransition(t.op, le.Outcome(), elapsed)
		ev := l.log.Info()
		if le.Kind == KindInternal {
			ev = l.log.Error().Err(le.Cause)
		}
		ev.Str("operation", t.op).Uint64("reservation_id", id).Str("outcome", le.Outcome()).Msg("reservation transition rejected")
		return "", le
	}

	l.metrics.RecordTransition(t.op, "ok", elapsed)
	l.log.Info().
		Str("operation", t.op).
		Uint64("reservation_id", id).
		Str("from", string(from)).
		Str("to", string(t.to)).
		Dur("elapsed", elapsed).
		Msg("reservation transition committed")

	l.publish(ctx, q.ReservationEvent{
		ReservationID: id,
		From:          string(from),
		To:            string(t.to),
		InvoiceCode:   invoiceCode,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return t.to, nil
}

// run is the transactional part.  It returns the status observed before
// the write.  Every error it returns is a *LifecycleError.
func (l *Lifecycle) run(ctx context.Context, id uint64, t transition) (model.ReservationStatus, string, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", "", internal(id, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var res model.Reservation
	if t.needsRow {
		res, err = l.reservations.GetByIDTx(ctx, tx, id)
	} else {
		res.ID = id
		res.Status, err = l.reservations.GetStatusTx(ctx, tx, id)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", notFound(id)
		}
		return "", "", internal(id, err)
	}
	from := res.Status

	if reason := t.check(from); reason != "" {
		return from, "", rejected(id, reason, rejectionMessage(t.op, reason))
	}
	if !from.CanTransitionTo(t.to) {
		// Only reachable with a status value outside the known set.
		return from, "", internal(id, errors.New("unexpected stored status "+string(from)))
	}

	if err := l.reservations.SetStatusTx(ctx, tx, id, t.to); err != nil {
		return from, "", internal(id, err)
	}
	var code string
	if t.effect != nil {
		if code, err = t.effect(ctx, tx, res); err != nil {
			return from, "", internal(id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return from, "", internal(id, err)
	}
	committed = true
	return from, code, nil
}

// rejectionMessage is the text shown to callers for a business rejection.
func rejectionMessage(op string, r Reason) string {
	switch {
	case r == ReasonAlreadyCanceled:
		return "already canceled"
	case r == ReasonAlreadyFinished && op == opCancel:
		return "cannot cancel a finished reservation"
	case r == ReasonAlreadyFinished:
		return "already finished"
	case r == ReasonNotPaid:
		return "only paid reservations can be checked out"
	case r == ReasonAlreadyPaid:
		return "already paid"
	}
	return ""
}

// publish hands the event to the publisher without letting a slow or
// absent broker affect the already committed transition.
func (l *Lifecycle) publish(ctx context.Context, ev q.ReservationEvent) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := l.publisher.Publish(pctx, ev)
	l.metrics.RecordPublish(err)
	if err != nil {
		l.log.Warn().Err(err).Uint64("reservation_id", ev.ReservationID).Str("to", ev.To).Msg("publish reservation event failed")
	}
}

// NewInvoiceCode returns a fresh invoice code such as "FAC-3F9A0C1B".
func NewInvoiceCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "FAC-" + strings.ToUpper(raw[:8])
}
