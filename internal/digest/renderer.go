package digest

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/jira-digest/internal/domain"
)

// NoCommentMarker replaces the comment block when no comment matches.
const NoCommentMarker = "N/A"

// Renderer turns an ordered ticket list into digest text.
type Renderer struct {
	gateway     Gateway
	baseURL     string
	logger      *zap.Logger
	concurrency int
}

// NewRenderer constructs a Renderer. baseURL is used for ticket links and
// concurrency bounds parallel detail fetches.
func NewRenderer(gateway Gateway, baseURL string, logger *zap.Logger, concurrency int) *Renderer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Renderer{gateway: gateway, baseURL: baseURL, logger: logger, concurrency: concurrency}
}

// RenderInput describes what to render.
type RenderInput struct {
	Tickets       []domain.Ticket
	CommentLength int
	Mode          domain.Mode
	// Self is the caller's email, used to pick comments in SelfMode.
	Self domain.Identity
}

// Render writes one block per ticket in the given order. In RosterMode a
// header naming the identity opens each group, separated from the previous
// group by a blank line. The returned text is not yet resolved, sanitized or
// trimmed.
func (r *Renderer) Render(ctx context.Context, in RenderInput) (string, []domain.Warning) {
	details, warnings := r.fetchDetails(ctx, in.Tickets)

	var (
		sb       strings.Builder
		previous domain.Identity
	)
	for i, ticket := range in.Tickets {
		filterKey := in.Self
		if in.Mode == domain.RosterMode {
			filterKey = ticket.OriginIdentity
			if i == 0 || ticket.OriginIdentity != previous {
				if i > 0 {
					sb.WriteString("\n")
				}
				name, warning := r.groupName(ctx, ticket.OriginIdentity)
				if warning != nil {
					warnings = append(warnings, *warning)
				}
				sb.WriteString("*" + name + "*\n")
				previous = ticket.OriginIdentity
			}
		}

		sb.WriteString(TicketLink(r.baseURL, ticket.Key) + " - " + ticket.Status + " - " + ticket.Summary + "\n")

		detail := details[i]
		if detail == nil {
			sb.WriteString(NoCommentMarker + "\n")
			continue
		}
		comment, ok := SelectComment(detail.Comments, in.Mode, filterKey)
		if !ok {
			sb.WriteString(NoCommentMarker + "\n")
			continue
		}

		statusChanged := detail.StatusChangedAt
		if statusChanged == "" {
			statusChanged = ticket.StatusChangedAt
		}
		if statusChanged != "" {
			sb.WriteString("Status Changed: " + FormatDate(statusChanged) + "\n")
		}
		sb.WriteString("Latest comment by " + comment.Author.DisplayName + " on " + FormatDate(comment.Created) + "\n")
		sb.WriteString("Text: " + Truncate(comment.Body, in.CommentLength) + "\n\n")
	}
	return sb.String(), warnings
}

// fetchDetails loads the full record of every ticket. A failed fetch leaves a
// nil entry and a warning.
func (r *Renderer) fetchDetails(ctx context.Context, tickets []domain.Ticket) ([]*domain.Ticket, []domain.Warning) {
	details := make([]*domain.Ticket, len(tickets))
	failures := make([]error, len(tickets))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, ticket := range tickets {
		g.Go(func() error {
			detail, err := r.gateway.GetTicket(ctx, ticket.Key)
			if err != nil {
				failures[i] = err
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	var warnings []domain.Warning
	for i, err := range failures {
		if err == nil {
			continue
		}
		r.logger.Warn("ticket detail fetch failed",
			zap.String("ticket", tickets[i].Key),
			zap.Error(err),
		)
		warnings = append(warnings, domain.Warning{
			Unit:    domain.UnitTicketDetail,
			Key:     tickets[i].Key,
			Message: err.Error(),
		})
	}
	return details, warnings
}

// groupName resolves the display name for a group header. A user without a
// display name is shown by email; the raw identity is used when the lookup
// fails or neither is set.
func (r *Renderer) groupName(ctx context.Context, identity domain.Identity) (string, *domain.Warning) {
	user, err := r.gateway.GetUser(ctx, identity)
	if err == nil && user != nil {
		if user.DisplayName != "" {
			return user.DisplayName, nil
		}
		if user.EmailAddress != "" {
			return user.EmailAddress, nil
		}
	}
	if err == nil {
		err = errNoDisplayName
	}
	r.logger.Warn("group header lookup failed",
		zap.String("identity", string(identity)),
		zap.Error(err),
	)
	return string(identity), &domain.Warning{
		Unit:    domain.UnitGroupHeader,
		Key:     string(identity),
		Message: err.Error(),
	}
}
