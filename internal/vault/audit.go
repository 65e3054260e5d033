// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"sort"
	"unicode/utf8"

	"github.com/toeirei/keyvault/internal/model"
)

// WeakThreshold is the number of characters below which a secret is weak.
const WeakThreshold = 12

// Report is the result of a vault audit.
type Report struct {
	// Weak lists services whose secret is shorter than WeakThreshold.
	Weak []string
	// ReuseGroups lists sets of two or more services sharing one secret.
	ReuseGroups [][]string
}

// Clean reports whether the audit found nothing.
func (r Report) Clean() bool {
	return len(r.Weak) == 0 && len(r.ReuseGroups) == 0
}

// Audit inspects decrypted credentials. Weak services are sorted, each reuse
// group is sorted, and groups are ordered by their first service.
func Audit(creds []model.PlainCredential) Report {
	var rep Report
	bySecret := make(map[string][]string)

	for _, c := range creds {
		if utf8.RuneCountInString(c.Secret) < WeakThreshold {
			rep.Weak = append(rep.Weak, c.Service)
		}
		bySecret[c.Secret] = append(bySecret[c.Secret], c.Service)
	}

	for _, services := range bySecret {
		if len(services) > 1 {
			sort.Strings(services)
			rep.ReuseGroups = append(rep.ReuseGroups, services)
		}
	}
	sort.Strings(rep.Weak)
	sort.Slice(rep.ReuseGroups, func(i, j int) bool {
		return rep.ReuseGroups[i][0] < rep.ReuseGroups[j][0]
	})
	return rep
}
