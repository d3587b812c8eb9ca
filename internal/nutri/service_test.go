package nutri_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"nutri-go/internal/nutri"
	"nutri-go/internal/testutil"
)

func mustLoad(t *testing.T, svc *nutri.NutriService) {
	t.Helper()
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func reopen(t *testing.T, store nutri.Store, clock nutri.Clock) *nutri.NutriService {
	t.Helper()
	ref := testutil.NewTestReference()
	svc := nutri.NewNutriService(store, testutil.NewTestVault(), ref,
		nutri.NewMockAnalyzer(ref.Foods, testutil.FixedChooser{}, 0),
		nutri.NewNopLogger(), clock, testutil.FixedChooser{})
	mustLoad(t, svc)
	return svc
}

func TestNutriService_LoadSeedsOnFirstRun(t *testing.T) {
	svc, store, _ := testutil.NewTestService(t)
	mustLoad(t, svc)

	st, err := svc.State()
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if len(st.Logs) != nutri.SeedDays*3 {
		t.Errorf("len(Logs) = %d, want %d", len(st.Logs), nutri.SeedDays*3)
	}
	if st.Profile.ID != "user_healthy" || st.Today != "2024-01-15" {
		t.Errorf("Profile.ID = %q, Today = %q", st.Profile.ID, st.Today)
	}
	if store.Saves != 1 {
		t.Errorf("Saves = %d, want 1", store.Saves)
	}
}

func TestNutriService_LoadExistingState(t *testing.T) {
	svc, store, clock := testutil.NewTestService(t)
	mustLoad(t, svc)
	if _, _, err := svc.LogFood("香蕉", 120, nutri.Breakfast, nil); err != nil {
		t.Fatalf("LogFood() error = %v", err)
	}

	clock.Advance(24 * time.Hour)
	again := reopen(t, store, clock)

	st, _ := again.State()
	if len(st.Logs) != nutri.SeedDays*3+1 {
		t.Errorf("len(Logs) = %d, want %d", len(st.Logs), nutri.SeedDays*3+1)
	}
	if st.Today != "2024-01-16" {
		t.Errorf("Today = %q, want the rolled date 2024-01-16", st.Today)
	}
	if store.Saves != 2 {
		t.Errorf("Saves = %d, want 2 (no reseed)", store.Saves)
	}
}

type corruptStore struct {
	*testutil.FlakyStore
	corrupt bool
}

func (s *corruptStore) LoadState() (*nutri.State, error) {
	if s.corrupt {
		s.corrupt = false
		return nil, nutri.ErrCorruptState
	}
	return s.FlakyStore.LoadState()
}

func TestNutriService_CorruptStateReseeds(t *testing.T) {
	_, flaky, clock := testutil.NewTestService(t)
	store := &corruptStore{FlakyStore: flaky, corrupt: true}

	svc := reopen(t, store, clock)
	st, _ := svc.State()
	if len(st.Logs) != nutri.SeedDays*3 {
		t.Errorf("len(Logs) = %d after reseed", len(st.Logs))
	}
	if flaky.Saves != 1 {
		t.Errorf("Saves = %d, want the reseed written back", flaky.Saves)
	}
}

func TestNutriService_LogFood(t *testing.T) {
	t.Run("warning confirmed", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		var seen []nutri.Warning
		entry, warnings, err := svc.LogFood("雞腿便當", 50, nutri.Lunch, func(w []nutri.Warning) bool {
			seen = w
			return true
		})
		if err != nil {
			t.Fatalf("LogFood() error = %v", err)
		}
		if len(warnings) != 1 || warnings[0].Medication != "Warfarin" || warnings[0].Subject != "高麗菜" {
			t.Errorf("warnings = %+v", warnings)
		}
		if len(seen) != 1 {
			t.Errorf("confirm saw %d warnings, want 1", len(seen))
		}
		if entry.Nutrients.Calories != 425 || entry.Time != "10:30" || entry.Date != "2024-01-15" {
			t.Errorf("entry = %+v", entry)
		}

		day, _ := svc.DailyTotals("")
		if len(day.Entries) != 4 || day.Totals.Calories != 3*850+425 {
			t.Errorf("today = %d entries, %v kcal", len(day.Entries), day.Totals.Calories)
		}
	})

	t.Run("warning declined", func(t *testing.T) {
		svc, store, _ := testutil.NewTestService(t)
		mustLoad(t, svc)
		saves := store.Saves

		_, warnings, err := svc.LogFood("雞腿便當", 100, nutri.Lunch, func([]nutri.Warning) bool { return false })
		if !errors.Is(err, nutri.ErrLogCancelled) {
			t.Fatalf("LogFood() error = %v, want ErrLogCancelled", err)
		}
		if len(warnings) != 1 {
			t.Errorf("warnings = %+v", warnings)
		}
		if entries, _ := svc.Entries("2024-01-15"); len(entries) != 3 {
			t.Errorf("today has %d entries, want 3", len(entries))
		}
		if store.Saves != saves {
			t.Error("cancelled log was saved")
		}
	})

	t.Run("no warning skips confirm", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		_, warnings, err := svc.LogFood("香蕉", 100, nutri.Breakfast, func([]nutri.Warning) bool {
			t.Error("confirm called without warnings")
			return false
		})
		if err != nil || len(warnings) != 0 {
			t.Errorf("LogFood() = %v, %v", warnings, err)
		}
	})

	t.Run("unknown food keeps its name", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		entry, _, err := svc.LogFood("披薩", 250, nutri.Dinner, nil)
		if err != nil {
			t.Fatalf("LogFood() error = %v", err)
		}
		if entry.Name != "披薩" || !entry.Nutrients.IsZero() || !slices.Equal(entry.Ingredients, []string{"未知"}) {
			t.Errorf("entry = %+v", entry)
		}
	})

	t.Run("invalid portion", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		if _, _, err := svc.LogFood("香蕉", 0, nutri.Breakfast, nil); !errors.Is(err, nutri.ErrInvalidPortion) {
			t.Errorf("LogFood() error = %v, want ErrInvalidPortion", err)
		}
	})

	t.Run("save failure rolls back", func(t *testing.T) {
		svc, store, _ := testutil.NewTestService(t)
		mustLoad(t, svc)
		store.Fail = true

		if _, _, err := svc.LogFood("香蕉", 100, nutri.Breakfast, nil); !errors.Is(err, testutil.ErrStoreUnavailable) {
			t.Fatalf("LogFood() error = %v, want ErrStoreUnavailable", err)
		}
		if entries, _ := svc.Entries(""); len(entries) != nutri.SeedDays*3 {
			t.Errorf("len(Entries) = %d after failed save", len(entries))
		}
	})

	t.Run("ids increase", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		a, _, _ := svc.LogFood("香蕉", 100, nutri.Breakfast, nil)
		b, _, _ := svc.LogFood("蘋果", 100, nutri.Breakfast, nil)
		if b.ID <= a.ID {
			t.Errorf("IDs %d then %d, want increasing", a.ID, b.ID)
		}
	})
}

func TestNutriService_Analyze(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)
	det, entry, err := svc.Analyze(context.Background(), nutri.Lunch)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if det.Name != "雞腿便當" || entry.Name != det.Name || entry.Portion != nutri.BaselinePortion {
		t.Errorf("Analyze() = %+v, %+v", det, entry)
	}
	warnings, err := svc.FoodWarnings(entry)
	if err != nil || len(warnings) != 1 {
		t.Errorf("FoodWarnings() = %+v, %v", warnings, err)
	}
	if entries, _ := svc.Entries("2024-01-15"); len(entries) != 3 {
		t.Errorf("Analyze saved an entry: today has %d", len(entries))
	}
}

func TestNutriService_Medications(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)

	if _, err := svc.AddMedication("   ", "1 tab"); !errors.Is(err, nutri.ErrEmptyMedicationName) {
		t.Errorf("AddMedication(blank) error = %v", err)
	}

	aspirin, err := svc.AddMedication(" Aspirin ", "100mg")
	if err != nil {
		t.Fatalf("AddMedication() error = %v", err)
	}
	if aspirin.Name != "Aspirin" {
		t.Errorf("Name = %q, want trimmed", aspirin.Name)
	}

	conflicts, _ := svc.MedicationConflicts()
	if len(conflicts) != 1 || conflicts[0].Medication != "Warfarin" || conflicts[0].Subject != "Aspirin" {
		t.Errorf("conflicts = %+v", conflicts)
	}
	dash, _ := svc.Dashboard()
	if !slices.ContainsFunc(dash.Risks, func(r nutri.Risk) bool { return r.Code == nutri.RiskMedication }) {
		t.Errorf("dashboard risks = %+v, want a medication risk", dash.Risks)
	}

	if err := svc.RemoveMedication(aspirin.ID); err != nil {
		t.Fatalf("RemoveMedication() error = %v", err)
	}
	if err := svc.RemoveMedication(aspirin.ID); !errors.Is(err, nutri.ErrMedicationNotFound) {
		t.Errorf("second RemoveMedication() error = %v", err)
	}

	meds, _ := svc.Medications()
	if len(meds) != 2 {
		t.Errorf("Medications() = %+v", meds)
	}
	if conflicts, _ := svc.MedicationConflicts(); len(conflicts) != 0 {
		t.Errorf("conflicts after removal = %+v", conflicts)
	}
}

func TestNutriService_Profile(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)

	saved, err := svc.SaveProfile(nutri.Profile{Name: "Amy", Age: 25, HeightCM: 175, WeightKG: 70})
	if err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if saved.TDEE != 1674 || saved.ID != "user_healthy" {
		t.Errorf("SaveProfile() = %+v", saved)
	}

	demo, err := svc.LoadDemoProfile(1)
	if err != nil {
		t.Fatalf("LoadDemoProfile() error = %v", err)
	}
	if demo.TDEE != 1800 || !demo.HasDisease("hypertension") {
		t.Errorf("LoadDemoProfile(1) = %+v", demo)
	}
	if p, _ := svc.Profile(); p.ID != "user_chronic" {
		t.Errorf("Profile().ID = %q", p.ID)
	}

	if _, err := svc.LoadDemoProfile(3); !errors.Is(err, nutri.ErrUnknownDemoProfile) {
		t.Errorf("LoadDemoProfile(3) error = %v", err)
	}
	if len(svc.DemoProfiles()) != 3 {
		t.Error("DemoProfiles() should list three profiles")
	}
}

func TestNutriService_Views(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)

	dash, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if dash.Day.Totals.Calories != 2550 || dash.TargetKcal != 2200 || len(dash.Recent) != nutri.RecentLimit {
		t.Errorf("Dashboard() = %v kcal, target %d, %d recent", dash.Day.Totals.Calories, dash.TargetKcal, len(dash.Recent))
	}
	var codes []nutri.RiskCode
	for _, r := range dash.Risks {
		codes = append(codes, r.Code)
	}
	if want := []nutri.RiskCode{nutri.RiskSodium, nutri.RiskCalories}; !slices.Equal(codes, want) {
		t.Errorf("risks = %v, want %v", codes, want)
	}

	advice, _ := svc.Advice(false)
	if got, want := adviceCodes(advice), []nutri.AdviceCode{nutri.AdviceOverTarget, nutri.AdviceTip}; !slices.Equal(got, want) {
		t.Errorf("Advice() = %v, want %v", got, want)
	}
	if advice[1].Text != nutri.DefaultTips[0] {
		t.Errorf("tip = %q", advice[1].Text)
	}

	report, _ := svc.Report("2024-01-14")
	if report.Date != "2024-01-14" || len(report.Entries) != 3 {
		t.Errorf("Report() = %s with %d entries", report.Date, len(report.Entries))
	}

	trend, _ := svc.Trend(7)
	if len(trend.Points) != 7 || trend.OverDays != 7 || trend.Average != 2550 {
		t.Errorf("Trend() = %+v", trend)
	}
}

func TestNutriService_AdviceOnEmptyDay(t *testing.T) {
	svc, store, clock := testutil.NewTestService(t)
	mustLoad(t, svc)

	clock.Advance(24 * time.Hour)
	svc = reopen(t, store, clock)

	advice, _ := svc.Advice(false)
	if got := adviceCodes(advice); !slices.Equal(got, []nutri.AdviceCode{nutri.AdviceWelcome}) {
		t.Errorf("Advice(false) = %v, want welcome only", got)
	}
	advice, _ = svc.Advice(true)
	if got := adviceCodes(advice); !slices.Equal(got, []nutri.AdviceCode{nutri.AdviceLowIntake, nutri.AdviceTip}) {
		t.Errorf("Advice(true) = %v", got)
	}
}

func TestNutriService_Reset(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)
	if _, err := svc.AddMedication("Metformin", "500mg"); err != nil {
		t.Fatalf("AddMedication() error = %v", err)
	}
	if _, err := svc.LoadDemoProfile(2); err != nil {
		t.Fatalf("LoadDemoProfile() error = %v", err)
	}

	if err := svc.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	st, _ := svc.State()
	if len(st.Medications) != 2 || st.Profile.ID != "user_healthy" || len(st.Logs) != nutri.SeedDays*3 {
		t.Errorf("state after reset: %d meds, profile %s, %d logs", len(st.Medications), st.Profile.ID, len(st.Logs))
	}
}

func TestNutriService_ExportReport(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)

	checksum, report, err := svc.ExportReport("")
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}
	if len(checksum) != 64 {
		t.Errorf("checksum %q is not a sha256 hex digest", checksum)
	}
	again, _, err := svc.ExportReport("")
	if err != nil || again != checksum {
		t.Errorf("re-export = %q, %v; want the same checksum", again, err)
	}

	fetched, err := svc.FetchReport(checksum)
	if err != nil {
		t.Fatalf("FetchReport() error = %v", err)
	}
	if fetched.Date != report.Date || fetched.Totals != report.Totals || len(fetched.Rows) != len(report.Rows) {
		t.Errorf("FetchReport() = %+v, want %+v", fetched, report)
	}

	if _, err := svc.FetchReport("missing"); err == nil {
		t.Error("FetchReport(missing) should fail")
	}
}

func TestNutriService_ExportWithoutVault(t *testing.T) {
	ref := testutil.NewTestReference()
	svc := nutri.NewNutriService(testutil.NewTestDatabase(t), nil, ref,
		nutri.NewMockAnalyzer(ref.Foods, testutil.FixedChooser{}, 0),
		nutri.NewNopLogger(), testutil.FixedClock(), testutil.FixedChooser{})
	if _, _, err := svc.ExportReport(""); !errors.Is(err, nutri.ErrNoVault) {
		t.Errorf("ExportReport() error = %v, want ErrNoVault", err)
	}
}

func TestNutriService_GetHistory(t *testing.T) {
	svc, store, _ := testutil.NewTestService(t)

	for _, name := range []string{"food add", "med add", "reset"} {
		op, err := store.CreateOperation(name, "[]")
		if err != nil {
			t.Fatalf("CreateOperation() error = %v", err)
		}
		if err := store.FinishOperation(op.ID, "success"); err != nil {
			t.Fatalf("FinishOperation() error = %v", err)
		}
	}

	ops, err := svc.GetHistory(2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 2 || ops[0].Operation != "reset" || ops[1].Operation != "med add" {
		t.Errorf("GetHistory(2) = %+v", ops)
	}
	if ops, _ := svc.GetHistory(0); len(ops) != 3 {
		t.Errorf("GetHistory(0) returned %d ops, want 3", len(ops))
	}
}
