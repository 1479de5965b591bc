package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aalmaz/go-site-backend/internal/domain"
)

func newServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := "file:" + name + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.AnalyticsEvent{}, &domain.OnlineVisitor{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func validInput() EventInput {
	return EventInput{
		VisitorID: "v1",
		SessionID: "s1",
		EventType: "pageview",
		Title:     "Hello World",
		Slug:      "/blog/hello-world",
		Referrer:  "https://example.org/",
	}
}

func TestRecord_RejectsMissingRequiredFields(t *testing.T) {
	db := newServiceDB(t, "svcvalidate")
	svc := NewAnalyticsService(db, "mysite.dev", "My Site")
	ctx := context.Background()

	mutations := map[string]func(*EventInput){
		"visitorId": func(in *EventInput) { in.VisitorID = "" },
		"sessionId": func(in *EventInput) { in.SessionID = "" },
		"eventType": func(in *EventInput) { in.EventType = "" },
		"title":     func(in *EventInput) { in.Title = "" },
		"slug":      func(in *EventInput) { in.Slug = "" },
		"referrer":  func(in *EventInput) { in.Referrer = "" },
	}
	for field, mutate := range mutations {
		in := validInput()
		mutate(&in)
		err := svc.Record(ctx, in)
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("missing %s: err = %v, want ErrMissingField", field, err)
		}
	}

	var count int64
	db.Model(&domain.AnalyticsEvent{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected inputs must not be persisted, found %d rows", count)
	}
}

func TestRecord_ServerAssignsTimestampAndDefaults(t *testing.T) {
	db := newServiceDB(t, "svcdefaults")
	svc := NewAnalyticsService(db, "mysite.dev", "My Site")
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }

	in := validInput()
	in.CountryCode = "DE"
	in.City = "Berlin"
	if err := svc.Record(context.Background(), in); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var e domain.AnalyticsEvent
	if err := db.First(&e).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	if e.Timestamp != fixed.UnixMilli() {
		t.Fatalf("timestamp = %d, want server clock %d", e.Timestamp, fixed.UnixMilli())
	}
	if e.Country != "Germany" || e.Flag != "\U0001F1E9\U0001F1EA" {
		t.Fatalf("geo derivation: country=%q flag=%q", e.Country, e.Flag)
	}
	if e.City != "Berlin" {
		t.Fatalf("city = %q", e.City)
	}
	// Optional fields absent from the input settle on the sentinel.
	if e.Browser != "Unknown" || e.OS != "Unknown" || e.DeviceType != "Unknown" || e.Timezone != "Unknown" {
		t.Fatalf("unknown defaults not applied: %+v", e)
	}
	if e.IsBot {
		t.Fatalf("human input classified as bot")
	}
}

func TestRecord_ClassifiesBotsAtInsert(t *testing.T) {
	db := newServiceDB(t, "svcbots")
	svc := NewAnalyticsService(db, "mysite.dev", "My Site")

	in := validInput()
	in.UserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1)"
	if err := svc.Record(context.Background(), in); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var e domain.AnalyticsEvent
	if err := db.First(&e).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	if !e.IsBot {
		t.Fatalf("crawler user agent not flagged as bot")
	}
}

func TestViewsBySlug_DecodesEscapedSlugs(t *testing.T) {
	db := newServiceDB(t, "svcslugviews")
	svc := NewAnalyticsService(db, "mysite.dev", "My Site")
	ctx := context.Background()

	in := validInput()
	in.Slug = "/blog/café"
	if err := svc.Record(ctx, in); err != nil {
		t.Fatalf("Record: %v", err)
	}

	count, err := svc.ViewsBySlug(ctx, "caf%C3%A9")
	if err != nil {
		t.Fatalf("ViewsBySlug: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1 (escaped slug must match)", count)
	}
}

func TestSummary_ComposesAllReports(t *testing.T) {
	db := newServiceDB(t, "svcsummary")
	svc := NewAnalyticsService(db, "mysite.dev", "My Site")
	ctx := context.Background()

	for _, visitor := range []string{"v1", "v2"} {
		in := validInput()
		in.VisitorID = visitor
		in.SessionID = "s-" + visitor
		in.Browser = "Firefox"
		in.OS = "Linux"
		in.DeviceType = "desktop"
		in.Language = "en-US"
		in.CountryCode = "DE"
		in.City = "Berlin"
		in.StatusCode = 200
		if err := svc.Record(ctx, in); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.MonthlyPageViewsStats != 2 || sum.MonthlyVisitsStats != 2 || sum.MonthlyVisitorsStats != 2 {
		t.Fatalf("counts unexpected: %+v", sum)
	}
	if len(sum.MonthlyCountries) != 1 || sum.MonthlyCountries[0].Country != "Germany" {
		t.Fatalf("countries unexpected: %+v", sum.MonthlyCountries)
	}
	if len(sum.MonthlyBrowsers) != 1 || sum.MonthlyBrowsers[0].Browser != "Firefox" {
		t.Fatalf("browsers unexpected: %+v", sum.MonthlyBrowsers)
	}
	if len(sum.MonthlySlugs) != 1 || sum.MonthlySlugs[0].Slug != "/blog/hello-world" {
		t.Fatalf("slugs unexpected: %+v", sum.MonthlySlugs)
	}
	// Single-pageview sessions everywhere, so the whole window bounces.
	if sum.MonthlyBounceRateStats != 100 {
		t.Fatalf("bounce rate = %v, want 100", sum.MonthlyBounceRateStats)
	}
	if sum.MonthlyEntryPagesStats == nil || sum.MonthlyExitPagesStats == nil {
		t.Fatalf("entry/exit pages missing: %+v", sum)
	}
}

func TestTotalViews_IncludesEverything(t *testing.T) {
	db := newServiceDB(t, "svctotal")
	svc := NewAnalyticsService(db, "mysite.dev", "My Site")
	ctx := context.Background()

	human := validInput()
	if err := svc.Record(ctx, human); err != nil {
		t.Fatalf("Record: %v", err)
	}
	bot := validInput()
	bot.VisitorID = "v2"
	bot.UserAgent = "AhrefsBot/7.0"
	if err := svc.Record(ctx, bot); err != nil {
		t.Fatalf("Record: %v", err)
	}

	total, err := svc.TotalViews(ctx)
	if err != nil {
		t.Fatalf("TotalViews: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2 (bots included in lifetime count)", total)
	}
}

func TestPresenceService_HeartbeatValidation(t *testing.T) {
	db := newServiceDB(t, "svcpresence")
	svc := NewPresenceService(db)
	ctx := context.Background()

	if err := svc.Heartbeat(ctx, "", "/blog/a"); !errors.Is(err, ErrMissingField) {
		t.Fatalf("empty visitor id: err = %v, want ErrMissingField", err)
	}

	if err := svc.Heartbeat(ctx, "v1", "/blog/a"); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	snap, err := svc.Online(ctx)
	if err != nil {
		t.Fatalf("Online: %v", err)
	}
	if snap.Total != 1 || snap.Pages["/blog/a"] != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}
