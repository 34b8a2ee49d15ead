package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/example/custody/internal/core/custody"
)

// Demo fixture IDs, stable so the demo config can point at them.
const (
	DemoFamilyID = "fam-demo"
	DemoDadID    = "g-dad"
	DemoMomID    = "g-mom"
)

// SeedFixtures populates the database with a co-parenting demo family: two
// guardians, two children, a 2-2-3 cycle starting on the Sunday on or
// before now, two weeks of school and a weekly activity.
func SeedFixtures(database *sql.DB, now time.Time) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO families (id, name, mode) VALUES (?, 'Demo family', 'co-parent')", DemoFamilyID); err != nil {
		return fmt.Errorf("seed families: %w", err)
	}

	guardians := []struct{ id, label, name, role string }{
		{DemoDadID, "dad", "Sam", "admin"},
		{DemoMomID, "mom", "Alex", "member"},
	}
	for _, g := range guardians {
		if _, err := tx.Exec(
			"INSERT INTO guardians (id, family_id, label, name, role) VALUES (?, ?, ?, ?, ?)",
			g.id, DemoFamilyID, g.label, g.name, g.role,
		); err != nil {
			return fmt.Errorf("seed guardians: %w", err)
		}
	}

	children := []struct{ id, name, dob string }{
		{"c-noa", "Noa", "2016-05-14"},
		{"c-eli", "Eli", "2019-11-02"},
	}
	for _, c := range children {
		if _, err := tx.Exec(
			"INSERT INTO children (id, family_id, name, date_of_birth) VALUES (?, ?, ?, ?)",
			c.id, DemoFamilyID, c.name, c.dob,
		); err != nil {
			return fmt.Errorf("seed children: %w", err)
		}
	}

	// 2-2-3: Mon/Tue dad, Wed/Thu mom, Fri-Sun alternating.
	pattern := []string{"dad", "dad", "mom", "mom", "dad", "dad", "dad", "mom", "mom", "dad", "dad", "mom", "mom", "mom"}
	slots := make([]custody.Slot, len(pattern))
	for i, label := range pattern {
		slots[i] = custody.Slot{ParentLabel: label}
	}
	data, err := custody.EncodeCycleData(slots)
	if err != nil {
		return fmt.Errorf("seed cycle: %w", err)
	}
	today := custody.DateOf(now)
	validFrom := custody.SundayOnOrBefore(today)
	if _, err := tx.Exec(
		`INSERT INTO custody_cycles (id, family_id, cycle_length, cycle_data, valid_from, default_handoff_time, version_number, created_by)
		 VALUES ('cyc-demo', ?, ?, ?, ?, '17:00', 1, ?)`,
		DemoFamilyID, len(pattern), string(data), validFrom.String(), DemoDadID,
	); err != nil {
		return fmt.Errorf("seed cycle: %w", err)
	}

	n := 0
	for offset := -7; offset < 14; offset++ {
		day := today.AddDays(offset)
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		n++
		id := fmt.Sprintf("ev-school-%03d", n)
		start := day.At(custody.TimeOfDay{Hour: 8, Minute: 30}, now.Location()).UTC().Format(time.RFC3339)
		end := day.At(custody.TimeOfDay{Hour: 15}, now.Location()).UTC().Format(time.RFC3339)
		if err := seedEvent(tx, id, "school", "School", "Oak Street School", start, end, "c-noa", "c-eli"); err != nil {
			return err
		}
		if day.Weekday() == time.Tuesday {
			start := day.At(custody.TimeOfDay{Hour: 17}, now.Location()).UTC().Format(time.RFC3339)
			end := day.At(custody.TimeOfDay{Hour: 18}, now.Location()).UTC().Format(time.RFC3339)
			if err := seedEvent(tx, id+"-soccer", "activity", "Soccer practice", "Riverside fields", start, end, "c-noa"); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func seedEvent(tx *sql.Tx, id, typ, title, location, start, end string, childIDs ...string) error {
	if _, err := tx.Exec(
		`INSERT INTO events (id, family_id, type, title, location, start_at, end_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, DemoFamilyID, typ, title, location, start, end, DemoDadID,
	); err != nil {
		return fmt.Errorf("seed events: %w", err)
	}
	for _, childID := range childIDs {
		if _, err := tx.Exec("INSERT INTO event_children (event_id, child_id) VALUES (?, ?)", id, childID); err != nil {
			return fmt.Errorf("seed event children: %w", err)
		}
	}
	return nil
}
