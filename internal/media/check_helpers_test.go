// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"errors"
	"testing"
)

// Test assertion helpers with "check" prefix to avoid conflicts with existing helpers.
// Each helper encapsulates common nil-check + value comparison patterns.
// Using t.Helper() ensures error messages point to the calling line.

// checkStringEqual checks that got equals want, failing if not
func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

// checkStringEmpty checks that value is empty
func checkStringEmpty(t *testing.T, fieldName, value string) {
	t.Helper()
	if value != "" {
		t.Errorf("%s should be empty, got %q", fieldName, value)
	}
}

// checkIntEqual checks that got equals want
func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

// checkIntPtrNil checks that ptr is nil
func checkIntPtrNil(t *testing.T, fieldName string, ptr *int) {
	t.Helper()
	if ptr != nil {
		t.Errorf("%s should be nil, got %d", fieldName, *ptr)
	}
}

// checkIntPtrEqual checks that ptr is not nil and equals want
func checkIntPtrEqual(t *testing.T, fieldName string, ptr *int, want int) {
	t.Helper()
	if ptr == nil {
		t.Errorf("%s should not be nil, expected %d", fieldName, want)
		return
	}
	if *ptr != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, *ptr)
	}
}

// checkInt64PtrNil checks that ptr is nil
func checkInt64PtrNil(t *testing.T, fieldName string, ptr *int64) {
	t.Helper()
	if ptr != nil {
		t.Errorf("%s should be nil, got %d", fieldName, *ptr)
	}
}

// checkInt64PtrEqual checks that ptr is not nil and equals want
func checkInt64PtrEqual(t *testing.T, fieldName string, ptr *int64, want int64) {
	t.Helper()
	if ptr == nil {
		t.Errorf("%s should not be nil, expected %d", fieldName, want)
		return
	}
	if *ptr != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, *ptr)
	}
}

// checkFloat64PtrNil checks that ptr is nil
func checkFloat64PtrNil(t *testing.T, fieldName string, ptr *float64) {
	t.Helper()
	if ptr != nil {
		t.Errorf("%s should be nil, got %f", fieldName, *ptr)
	}
}

// checkFloat64PtrEqual checks that ptr is not nil and equals want
func checkFloat64PtrEqual(t *testing.T, fieldName string, ptr *float64, want float64) {
	t.Helper()
	if ptr == nil {
		t.Errorf("%s should not be nil, expected %f", fieldName, want)
		return
	}
	if *ptr != want {
		t.Errorf("%s: expected %f, got %f", fieldName, want, *ptr)
	}
}

// checkNil checks that ptr value represents nil
func checkNil(t *testing.T, fieldName string, isNil bool) {
	t.Helper()
	if !isNil {
		t.Errorf("%s should be nil", fieldName)
	}
}

// checkNoError fails the test if err is not nil
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkError fails the test if err is nil
func checkError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// checkErrorIs fails the test if err does not wrap target
func checkErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Errorf("expected error wrapping %v, got %v", target, err)
	}
}

// checkSliceLen checks that slice has expected length
func checkSliceLen(t *testing.T, name string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected length %d, got %d", name, want, got)
	}
}

// checkTrue checks that condition is true
func checkTrue(t *testing.T, description string, condition bool) {
	t.Helper()
	if !condition {
		t.Errorf("expected %s to be true", description)
	}
}
