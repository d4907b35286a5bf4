package funnel

import (
	"strconv"

	"github.com/dmitrymomot/funnel/pkg/downsell"
	"github.com/dmitrymomot/funnel/pkg/i18n"
	"github.com/dmitrymomot/funnel/pkg/valuation"
)

// PlanSummary is the plan line shown above the form.
type PlanSummary struct {
	Tier       string `json:"tier"`
	Recurrence string `json:"recurrence"`
	Trial      string `json:"trial,omitempty"`
}

// Labels are the form field labels.
type Labels struct {
	FirstName      string `json:"first_name"`
	Email          string `json:"email"`
	UseCases       string `json:"use_cases"`
	UsageFrequency string `json:"usage_frequency"`
}

// FAQ is a question with its answer.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OfferCopy is the copy of a shown downsell.
type OfferCopy struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Accept  string `json:"accept"`
	Dismiss string `json:"dismiss"`
}

// Page is the localized funnel page for a session.
type Page struct {
	Language    string       `json:"language"`
	Headline    string       `json:"headline"`
	Subheadline string       `json:"subheadline,omitempty"`
	Button      string       `json:"button"`
	Plan        *PlanSummary `json:"plan,omitempty"`
	Labels      Labels       `json:"labels"`
	Benefits    []string     `json:"benefits"`
	FAQ         []FAQ        `json:"faq,omitempty"`
	TrialNotice bool         `json:"trial_notice"`
	Offer       *OfferCopy   `json:"offer,omitempty"`
}

// Present renders the page copy for a session in its language. Trial and
// direct-paid plans get different headline, button and benefits; the trial
// FAQ only appears for trials.
func Present(sess *Session, c *i18n.Copy) Page {
	snap := sess.Snapshot()
	lang := snap.Language
	t := func(key string, args ...string) string { return c.T(lang, key, args...) }

	page := Page{
		Language:    lang,
		TrialNotice: snap.HasTrial,
		Labels: Labels{
			FirstName:      t("label.firstName"),
			Email:          t("label.email"),
			UseCases:       t("label.useCases"),
			UsageFrequency: t("label.usageFrequency"),
		},
	}

	if snap.HasTrial {
		page.Headline = t("headline")
		page.Button = t("button.submit")
		page.Benefits = c.Strings(lang, "benefit.trial", "benefit.features", "benefit.payNothing", "benefit.cancel")
		page.FAQ = []FAQ{
			{Question: t("faq.creditCard.question"), Answer: t("faq.creditCard.answer")},
			{Question: t("faq.avoid.question"), Answer: t("faq.avoid.answer")},
		}
	} else {
		page.Headline = t("headlineNoTrial")
		page.Subheadline = t("subheadline")
		page.Button = t("button.submitNoTrial")
		page.Benefits = c.Strings(lang, "benefit.features")
	}

	if def := snap.Plan; def != nil {
		summary := &PlanSummary{
			Tier:       string(def.Tier),
			Recurrence: def.Recurrence.Title(),
		}
		if def.HasTrial() {
			summary.Trial = t("plan.trial", "days", strconv.Itoa(def.TrialDays))
		} else if snap.HasTrial {
			summary.Trial = t("plan.trial", "days", strconv.Itoa(valuation.DefaultTrialDays))
		}
		page.Plan = summary
	}

	if snap.State == downsell.StateOfferShown && snap.Offer != nil {
		kind := snap.Offer.Kind
		page.Offer = &OfferCopy{
			Title:   t(kind.CopyKey("title")),
			Body:    t(kind.CopyKey("body")),
			Accept:  t(kind.CopyKey("accept")),
			Dismiss: t(kind.CopyKey("dismiss")),
		}
	}
	return page
}
