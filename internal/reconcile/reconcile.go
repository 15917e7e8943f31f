// Package reconcile turns the complete candidate set of one run into the
// final record set. It runs strictly after every per-document stage has
// finished: both of its passes need the whole set at once, so there is no
// streaming variant.
package reconcile

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ssoetl/internal/logger"
	"ssoetl/pkg/models"
)

// Result is the reconciled output of one run.
type Result struct {
	Records []models.FinalRecord

	// DuplicatesSuperseded counts candidates dropped in favor of a newer copy
	// of the same incident.
	DuplicatesSuperseded int
}

// Reconcile de-duplicates candidates by incident key and disambiguates
// receiving-water names shared across permittees. Candidates are consumed in
// input order; callers that want deterministic tie-breaking sort them first.
func Reconcile(candidates []models.CandidateRecord) Result {
	log := logger.WithComponent("reconcile")

	kept, superseded := dedupeKeepNewest(candidates, log)

	records := make([]models.FinalRecord, 0, len(kept))
	for _, c := range kept {
		records = append(records, models.FinalRecord{
			CandidateRecord:       c,
			Key:                   c.DedupKey(),
			ReceivingWaterDisplay: rawWaterName(&c),
		})
	}

	disambiguate(records, log)

	return Result{Records: records, DuplicatesSuperseded: superseded}
}

// dedupeKeepNewest keeps one candidate per dedup key: the one whose footer
// timestamp is latest. A candidate with a timestamp beats one without; when
// both lack timestamps or they are equal, the earlier candidate stands.
// First-appearance order of keys is preserved.
func dedupeKeepNewest(candidates []models.CandidateRecord, log zerolog.Logger) ([]models.CandidateRecord, int) {
	byKey := make(map[string]models.CandidateRecord)
	order := make([]string, 0, len(candidates))
	superseded := 0

	for _, c := range candidates {
		key := c.DedupKey()
		old, seen := byKey[key]
		if !seen {
			byKey[key] = c
			order = append(order, key)
			continue
		}

		superseded++
		if newerThan(c.FooterTimestamp, old.FooterTimestamp) {
			log.Debug().
				Str("key", key).
				Str("kept", c.FileName).
				Str("dropped", old.FileName).
				Msg("newer copy supersedes earlier filing")
			byKey[key] = c
		}
	}

	kept := make([]models.CandidateRecord, 0, len(order))
	for _, key := range order {
		kept = append(kept, byKey[key])
	}
	return kept, superseded
}

func newerThan(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

// disambiguate rewrites ReceivingWaterDisplay to "<name> - <tag>" for every
// record whose receiving-water name is also used by a different permittee.
// Names used by a single permittee pass through untouched.
func disambiguate(records []models.FinalRecord, log zerolog.Logger) {
	// Normalized name -> distinct non-empty permittees using it.
	owners := make(map[string]map[string]struct{})
	for i := range records {
		name := rawWaterName(&records[i].CandidateRecord)
		if name == "" {
			continue
		}
		key := waterKey(name)
		if owners[key] == nil {
			owners[key] = make(map[string]struct{})
		}
		if p := permitteeName(&records[i].CandidateRecord); p != "" {
			owners[key][p] = struct{}{}
		}
	}

	for i := range records {
		name := rawWaterName(&records[i].CandidateRecord)
		if name == "" {
			continue
		}
		if len(owners[waterKey(name)]) <= 1 {
			continue
		}
		tag := utilityShortName(permitteeName(&records[i].CandidateRecord))
		if tag == "" {
			// No usable permittee tag: the shared name stands as-is.
			continue
		}
		records[i].ReceivingWaterDisplay = name + " - " + tag
		log.Debug().
			Str("water", name).
			Str("tag", tag).
			Msg("shared waterbody name tagged by permittee")
	}
}

func rawWaterName(c *models.CandidateRecord) string {
	if c.ReceivingWaterRaw == nil {
		return ""
	}
	return strings.TrimSpace(*c.ReceivingWaterRaw)
}

func permitteeName(c *models.CandidateRecord) string {
	if c.Permittee == nil {
		return ""
	}
	return strings.TrimSpace(*c.Permittee)
}

// waterKey is the grouping key for waterbody names: whitespace-collapsed and
// case-folded, so OCR casing and spacing noise does not split a group.
func waterKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
