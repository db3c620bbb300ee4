package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"subfetch/internal/logging"
)

// readChoice prompts until the operator enters an integer in [lo, hi].
// Invalid input is reported and never clamped.
func (s *Session) readChoice(ctx context.Context, message string, lo, hi int) (int, error) {
	for {
		line, err := s.console.Prompt(ctx, message)
		if err != nil {
			return 0, fmt.Errorf("read choice: %w", err)
		}
		choice, err := parseChoice(line, lo, hi)
		if err == nil {
			return choice, nil
		}
		s.logger.Debug("invalid choice", logging.String("input", line), logging.Error(err))
		s.console.Notify(NoticeWarn, invalidChoiceMessage(line, lo, hi))
	}
}

func parseChoice(input string, lo, hi int) (int, error) {
	trimmed := strings.TrimSpace(input)
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, trimmed)
	}
	if value < lo || value > hi {
		return 0, fmt.Errorf("%w: %d outside %d-%d", ErrInvalidInput, value, lo, hi)
	}
	return value, nil
}

func invalidChoiceMessage(input string, lo, hi int) string {
	if _, err := strconv.Atoi(strings.TrimSpace(input)); err != nil {
		return "Invalid input. Please enter a number."
	}
	return fmt.Sprintf("Invalid choice. Enter a number between %d and %d.", lo, hi)
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
