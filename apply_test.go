package dirz

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestApply(t *testing.T) {
	t.Run("Apply Success", func(t *testing.T) {
		parser := Apply("parse", Forward, func(_ context.Context, s string) (string, error) {
			if s == "" {
				return "", errors.New("empty string")
			}
			return s + "_parsed", nil
		})

		result, err := parser.Process(context.Background(), "123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "123_parsed" {
			t.Errorf("expected '123_parsed', got %q", result)
		}
	})

	t.Run("Apply Error Returns Input", func(t *testing.T) {
		parser := Apply("parse", Forward, func(_ context.Context, s string) (string, error) {
			return "garbage", errors.New("rejected")
		})

		result, err := parser.Process(context.Background(), "input")
		if err == nil || !strings.Contains(err.Error(), "rejected") {
			t.Fatalf("expected rejection, got %v", err)
		}
		if result != "input" {
			t.Errorf("expected input returned on failure, got %q", result)
		}
	})

	t.Run("Apply Direct Pass-Through", func(t *testing.T) {
		callCount := 0
		processor := Apply("increment", Backward, func(_ context.Context, n int) (int, error) {
			callCount++
			return n + 1, nil
		})

		result, err := processor.Process(context.Background(), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != 6 {
			t.Errorf("expected 6, got %d", result)
		}
		if callCount != 1 {
			t.Errorf("expected function to be called once, called %d times", callCount)
		}
	})

	t.Run("Apply Panic", func(t *testing.T) {
		processor := Apply("explode", Forward, func(_ context.Context, n int) (int, error) {
			panic("apply exploded")
		})

		result, err := processor.Process(context.Background(), 3)
		if !errors.Is(err, ErrPanic) {
			t.Fatalf("expected ErrPanic, got %v", err)
		}
		if !strings.Contains(err.Error(), "apply exploded") {
			t.Errorf("expected panic value in message, got %v", err)
		}
		if result != 3 {
			t.Errorf("expected input restored, got %d", result)
		}
	})
}
