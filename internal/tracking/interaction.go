package tracking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rosa-dev/rosa/internal/activity"
	"github.com/rosa-dev/rosa/internal/ledger"
	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/period"
)

// ErrInvalidInteraction is matched by every rejected interaction.
var ErrInvalidInteraction = errors.New("invalid interaction")

var validate = validator.New()

// AddInteraction records a meeting or contact with a beneficiary. The type
// defaults to ASSOCIATION. A period, when set, must exist in the ledger.
// A follow-up date or notes imply a follow-up. ID, actor and time are
// filled in by the service.
func (s *Service) AddInteraction(ctx context.Context, in model.Interaction) (model.Interaction, error) {
	if in.Type == "" {
		in.Type = model.InteractionAssociation
	}
	in.Title = strings.TrimSpace(in.Title)
	if !in.FollowUpDate.IsZero() || in.FollowUpNotes != "" {
		in.FollowUpRequired = true
	}
	if err := validateInteraction(in); err != nil {
		return model.Interaction{}, err
	}

	if in.Period != "" {
		if err := period.Validate(in.Period); err != nil {
			return model.Interaction{}, fmt.Errorf("%w: %w", ErrInvalidInteraction, err)
		}
		l, err := s.repo.Load(ctx, in.Beneficiary)
		if err != nil {
			return model.Interaction{}, err
		}
		if !slices.Contains(l.Periods(), in.Period) {
			return model.Interaction{}, fmt.Errorf("%w: %s", ledger.ErrPeriodNotFound, in.Period)
		}
	}

	in.ID = s.newID()
	in.Actor = s.actor
	in.At = s.now().UTC()
	if err := s.repo.AddInteraction(ctx, in); err != nil {
		return model.Interaction{}, err
	}

	s.logger.Info("interaction added",
		zap.String("beneficiary_id", in.Beneficiary),
		zap.String("interaction_id", in.ID),
		zap.String("type", string(in.Type)),
		zap.Bool("follow_up", in.FollowUpRequired))
	if err := s.record(activity.ActionAddInteraction, in.Beneficiary, in.Period, string(in.Type)+": "+in.Title); err != nil {
		return in, err
	}
	return in, nil
}

// Interactions lists a beneficiary's interactions, newest first. With
// followUpOnly set, only those still flagged for follow-up are kept.
func (s *Service) Interactions(ctx context.Context, id string, followUpOnly bool) ([]model.Interaction, error) {
	list, err := s.repo.Interactions(ctx, id)
	if err != nil {
		return nil, err
	}
	if followUpOnly {
		list = slices.DeleteFunc(list, func(in model.Interaction) bool { return !in.FollowUpRequired })
	}
	return list, nil
}

func validateInteraction(in model.Interaction) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating interaction: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q constraint", strings.ToLower(fe.Field()), fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInteraction, strings.Join(msgs, "; "))
}
