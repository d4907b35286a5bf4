package signup

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/funnel/handler"
	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/i18n"
	"github.com/dmitrymomot/funnel/pkg/lead"
	"github.com/dmitrymomot/funnel/pkg/logger"
	"github.com/dmitrymomot/funnel/pkg/plan"
	"github.com/dmitrymomot/funnel/pkg/visitor"
	"github.com/dmitrymomot/funnel/svc/funnel"
)

const maxSignalSize = 64 << 10

// StartRequest carries the landing URL parameters.
type StartRequest struct {
	Plan        string `query:"plan" json:"plan"`
	Product     string `query:"product" json:"product"`
	Environment string `query:"environment" json:"environment"`
	PageURL     string `query:"page_url" json:"page_url"`
}

// SessionRequest addresses a session.
type SessionRequest struct {
	ID string `path:"id"`
}

// SubmitRequest is the signup form of a session.
type SubmitRequest struct {
	ID string `path:"id" json:"-"`
	lead.Form
}

// NotificationRequest addresses a Paddle environment.
type NotificationRequest struct {
	Env string `path:"env"`
}

// SessionView is a session with its localized page.
type SessionView struct {
	Session funnel.Snapshot `json:"session"`
	Page    funnel.Page     `json:"page"`
}

func (m *module) view(sess *funnel.Session) SessionView {
	return SessionView{Session: sess.Snapshot(), Page: funnel.Present(sess, m.copy)}
}

func (m *module) start(ctx handler.Context, req StartRequest) handler.Response {
	info := visitor.FromContext(ctx)
	pageURL := req.PageURL
	if pageURL == "" {
		pageURL = ctx.Request().Referer()
	}
	sess, err := m.funnel.Start(ctx, funnel.Entry{
		Params: plan.EntryParams{
			Plan:        req.Plan,
			Product:     req.Product,
			Environment: req.Environment,
		},
		Language:  i18n.GetLocale(ctx),
		Referral:  info.Referral,
		ClientIP:  info.ClientIP,
		UserAgent: info.UserAgent,
		PageURL:   pageURL,
	})
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(m.view(sess), handler.WithJSONStatus(http.StatusCreated))
}

func (m *module) show(ctx handler.Context, req SessionRequest) handler.Response {
	sess, err := m.funnel.Session(ctx, req.ID)
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(m.view(sess))
}

func (m *module) submit(ctx handler.Context, req SubmitRequest) handler.Response {
	res, err := m.funnel.Submit(ctx, req.ID, req.Form)
	if err != nil {
		var fe lead.FieldErrors
		if errors.As(err, &fe) {
			return handler.JSONError(m.translateFieldErrors(ctx, req.ID, fe))
		}
		return m.fail(ctx, err)
	}
	return handler.JSON(res)
}

// translateFieldErrors renders field error keys in the session language.
func (m *module) translateFieldErrors(ctx handler.Context, id string, fe lead.FieldErrors) handler.ValidationError {
	lang := i18n.GetLocale(ctx)
	if sess, err := m.funnel.Session(ctx, id); err == nil {
		lang = sess.Snapshot().Language
	}
	verr := make(handler.ValidationError, len(fe))
	for field, key := range fe {
		verr[field] = m.copy.T(lang, key)
	}
	return verr
}

func (m *module) signal(ctx handler.Context, req SessionRequest) handler.Response {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxSignalSize))
	if err != nil {
		return m.fail(ctx, errors.Join(checkout.ErrInvalidSignal, err))
	}
	sig, err := checkout.ParseSignal(body)
	if err != nil {
		return m.fail(ctx, err)
	}
	out, err := m.funnel.HandleSignal(ctx, req.ID, sig)
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(out)
}

func (m *module) acceptOffer(ctx handler.Context, req SessionRequest) handler.Response {
	res, err := m.funnel.AcceptOffer(ctx, req.ID)
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(res)
}

func (m *module) dismissOffer(ctx handler.Context, req SessionRequest) handler.Response {
	out, err := m.funnel.DismissOffer(ctx, req.ID)
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(out)
}

// notification answers 2xx for notifications the funnel cannot use, so
// Paddle does not retry them.
func (m *module) notification(ctx handler.Context, req NotificationRequest) handler.Response {
	parser := m.notifications[environment.Environment(req.Env)]
	if parser == nil {
		return m.fail(ctx, ErrUnknownEnvironment)
	}
	n, err := parser.Parse(ctx.Request())
	switch {
	case errors.Is(err, checkout.ErrIgnoredNotification):
		return handler.JSON(funnel.Outcome{Ignored: true})
	case err != nil:
		return m.fail(ctx, err)
	}

	out, err := m.funnel.HandleNotification(ctx, n)
	if errors.Is(err, funnel.ErrSessionNotFound) {
		m.logger.WarnContext(ctx, "notification for unknown session",
			logger.SessionID(n.SessionID),
			logger.Event(n.EventType),
		)
		return handler.JSON(funnel.Outcome{Signal: n.Signal.Kind, Ignored: true})
	}
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(out)
}

// fail routes err through the module error handler.
func (m *module) fail(ctx handler.Context, err error) handler.Response {
	return errorResponse{ctx: ctx, err: err, handle: m.errorHandler}
}

type errorResponse struct {
	ctx    handler.Context
	err    error
	handle handler.ErrorHandler[handler.Context]
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	e.handle(e.ctx, e.err)
	return nil
}
