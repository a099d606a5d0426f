package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"timber-backend/internal/models"
	"timber-backend/internal/repositories"
)

// maxPackageSequence is the last sequence value before wrapping back to 1
const maxPackageSequence = 9999

var (
	processCodePattern   = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)
	packageNumberPattern = regexp.MustCompile(`^N-([A-Z0-9]{1,10})-(\d{4})$`)
)

// NormalizeProcessCode trims and uppercases a process code and checks its shape
func NormalizeProcessCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", newError(KindValidation, "process code is required")
	}
	if !processCodePattern.MatchString(code) {
		return "", newError(KindValidation, "process code %q must be 1-10 letters or digits", code)
	}
	return code, nil
}

// FormatPackageNumber renders N-{code}-{0001..9999}
func FormatPackageNumber(code string, seq int) string {
	return fmt.Sprintf("N-%s-%04d", code, seq)
}

// IsPackageNumber reports whether number has the package number shape for any process
func IsPackageNumber(number string) bool {
	return packageNumberPattern.MatchString(number)
}

// ParsePackageSequence extracts the sequence of number when it belongs to code
func ParsePackageSequence(code, number string) (int, bool) {
	m := packageNumberPattern.FindStringSubmatch(number)
	if m == nil || m[1] != code {
		return 0, false
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil || seq < 1 || seq > maxPackageSequence {
		return 0, false
	}
	return seq, true
}

// NextSequence returns the sequence following seq, wrapping 9999 to 1
func NextSequence(seq int) int {
	if seq < 0 {
		seq = 0
	}
	return seq%maxPackageSequence + 1
}

// MaxSequence returns the highest sequence among numbers that belong to code, or 0
func MaxSequence(code string, numbers []string) int {
	highest := 0
	for _, n := range numbers {
		if seq, ok := ParsePackageSequence(code, n); ok && seq > highest {
			highest = seq
		}
	}
	return highest
}

func packageNumberPrefix(code string) string {
	return "N-" + code + "-"
}

// scanMaxSequence reads both numbering sources (inventory and draft outputs)
// and returns the highest sequence in use for the process
func scanMaxSequence(ctx context.Context, store repositories.ProductionStore, orgID int, code string) (int, error) {
	numbers, err := store.ListPackageNumbers(ctx, orgID, packageNumberPrefix(code))
	if err != nil {
		return 0, storeError(KindQueryFailed, "failed to read existing package numbers", err)
	}
	return MaxSequence(code, numbers), nil
}

// allocatePackageNumbers numbers every output lacking a package number, in
// the order given. It must run inside a transaction: the counter row lock
// serialises concurrent allocators and a failure leaves no output numbered.
func allocatePackageNumbers(ctx context.Context, tx repositories.ProductionStore, orgID int, code string, outputs []models.ProductionOutput) ([]string, error) {
	var pending []int
	for i := range outputs {
		if !outputs[i].HasPackageNumber() {
			pending = append(pending, i)
		}
	}
	assigned := []string{}
	if len(pending) == 0 {
		return assigned, nil
	}

	if _, ok, err := tx.GetCounter(ctx, orgID, code); err != nil {
		return nil, storeError(KindQueryFailed, "failed to read package number counter", err)
	} else if !ok {
		// First allocation for this process: continue after what is already in use
		seed, err := scanMaxSequence(ctx, tx, orgID, code)
		if err != nil {
			return nil, err
		}
		if err := tx.EnsureCounter(ctx, orgID, code, seed); err != nil {
			return nil, storeError(KindUpdateFailed, "failed to initialise package number counter", err)
		}
	}

	for _, idx := range pending {
		number, err := nextFreeNumber(ctx, tx, orgID, code)
		if err != nil {
			return nil, err
		}
		if err := tx.SetOutputPackageNumber(ctx, outputs[idx].ID, number); err != nil {
			return nil, storeError(KindUpdateFailed, fmt.Sprintf("failed to assign %s to output %d", number, outputs[idx].ID), err)
		}
		n := number
		outputs[idx].PackageNumber = &n
		assigned = append(assigned, number)
	}
	return assigned, nil
}

// nextFreeNumber advances the counter until it lands on a number that is not
// already used in inventory or on another output
func nextFreeNumber(ctx context.Context, tx repositories.ProductionStore, orgID int, code string) (string, error) {
	for attempt := 0; attempt < maxPackageSequence; attempt++ {
		seq, err := tx.AdvanceCounter(ctx, orgID, code)
		if err != nil {
			return "", storeError(KindUpdateFailed, "failed to advance package number counter", err)
		}
		number := FormatPackageNumber(code, seq)
		inUse, err := tx.PackageNumberInUse(ctx, orgID, number)
		if err != nil {
			return "", storeError(KindQueryFailed, "failed to check package number", err)
		}
		if !inUse {
			return number, nil
		}
	}
	return "", newError(KindConflict, "all package numbers for process %s are in use", code)
}

// previewNextNumber computes the number the next allocation would produce
// without consuming it
func previewNextNumber(ctx context.Context, store repositories.ProductionStore, orgID int, code string) (int, error) {
	current, ok, err := store.GetCounter(ctx, orgID, code)
	if err != nil {
		return 0, storeError(KindQueryFailed, "failed to read package number counter", err)
	}
	if !ok {
		if current, err = scanMaxSequence(ctx, store, orgID, code); err != nil {
			return 0, err
		}
	}

	seq := current
	for attempt := 0; attempt < maxPackageSequence; attempt++ {
		seq = NextSequence(seq)
		inUse, err := store.PackageNumberInUse(ctx, orgID, FormatPackageNumber(code, seq))
		if err != nil {
			return 0, storeError(KindQueryFailed, "failed to check package number", err)
		}
		if !inUse {
			return seq, nil
		}
	}
	return 0, newError(KindConflict, "all package numbers for process %s are in use", code)
}
