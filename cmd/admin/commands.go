package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/wolfman30/sports-travel-platform/internal/app/bootstrap"
	"github.com/wolfman30/sports-travel-platform/internal/awsconfig"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/internal/money"
	"github.com/wolfman30/sports-travel-platform/internal/notify"
	"github.com/wolfman30/sports-travel-platform/internal/quotes"
	"github.com/wolfman30/sports-travel-platform/internal/quotes/document"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func required(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, "-"+pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := a.apiClient()
	if err != nil {
		return err
	}
	s, err := client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", s.User.Name, s.User.Role)
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "expires %s\n", s.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Fprintf(a.out, "API_TOKEN=%s\n", s.Token)
	return nil
}

func (a *app) leadsCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: admin leads <create|status|history> ...")
	}
	switch args[0] {
	case "create":
		return a.createLead(ctx, args[1:])
	case "status":
		return a.changeLeadStatus(ctx, args[1:])
	case "history":
		return a.leadHistory(ctx, args[1:])
	default:
		return fmt.Errorf("unknown leads command %q", args[0])
	}
}

func (a *app) createLead(ctx context.Context, args []string) error {
	fs := newFlagSet("leads create")
	name := fs.String("name", "", "traveller name")
	email := fs.String("email", "", "traveller email")
	phone := fs.String("phone", "", "traveller phone")
	eventID := fs.String("event", "", "event id")
	packageID := fs.String("package", "", "package id")
	travelers := fs.Int("travelers", 1, "number of travellers")
	date := fs.String("date", "", "travel date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("date", *date); err != nil {
		return err
	}
	travelDate, err := parseDate("date", *date)
	if err != nil {
		return err
	}

	var opts []leads.ServiceOption
	if strings.TrimSpace(a.cfg.ReceiverEmail) != "" {
		cat, err := a.catalogService(ctx)
		if err != nil {
			return err
		}
		sender, err := bootstrap.BuildEmailSender(ctx, a.cfg, a.logger)
		if err != nil {
			return err
		}
		inquiries := notify.NewInquiryNotifier(sender, a.cfg.ReceiverEmail, a.logger)
		opts = append(opts, leads.WithNotifier(notify.NewLeadNotifier(inquiries, cat, a.logger)))
	}
	svc, err := a.leadService(ctx, opts...)
	if err != nil {
		return err
	}
	lead, err := svc.Create(ctx, leads.CreateLeadRequest{
		Name:              *name,
		Email:             *email,
		Phone:             *phone,
		EventID:           *eventID,
		PackageID:         *packageID,
		NumberOfTravelers: *travelers,
		TravelDate:        travelDate,
		Notes:             *notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "lead %s created for %s (%s)\n", lead.ID, lead.Name, lead.Status)
	return nil
}

func (a *app) changeLeadStatus(ctx context.Context, args []string) error {
	fs := newFlagSet("leads status")
	id := fs.String("id", "", "lead id")
	to := fs.String("to", "", "new status")
	notes := fs.String("notes", "", "status notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id, "to", *to); err != nil {
		return err
	}
	status, err := leads.ParseStatus(*to)
	if err != nil {
		return err
	}
	svc, err := a.leadService(ctx)
	if err != nil {
		return err
	}
	lead, err := svc.ChangeStatus(ctx, *id, status, *notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "lead %s is now %s\n", lead.ID, lead.Status)
	return nil
}

func (a *app) leadHistory(ctx context.Context, args []string) error {
	fs := newFlagSet("leads history")
	id := fs.String("id", "", "lead id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	svc, err := a.leadService(ctx)
	if err != nil {
		return err
	}
	entries, err := svc.History(ctx, *id)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tFROM\tTO\tNOTES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.UTC().Format("2006-01-02 15:04"), e.FromStatus, e.ToStatus, e.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if err := svc.Audit(ctx, *id); err != nil {
		return fmt.Errorf("history audit failed: %w", err)
	}
	fmt.Fprintln(a.out, "history consistent with current status")
	return nil
}

func (a *app) quotesCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: admin quotes <generate|expired|pdf> ...")
	}
	switch args[0] {
	case "generate":
		return a.generateQuote(ctx, args[1:])
	case "expired":
		return a.expiredQuotes(ctx)
	case "pdf":
		return a.quotePDF(ctx, args[1:])
	default:
		return fmt.Errorf("unknown quotes command %q", args[0])
	}
}

func (a *app) generateQuote(ctx context.Context, args []string) error {
	fs := newFlagSet("quotes generate")
	leadID := fs.String("lead", "", "lead id")
	validUntil := fs.String("valid-until", "", "last valid day (YYYY-MM-DD)")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("lead", *leadID); err != nil {
		return err
	}
	req := quotes.GenerateRequest{LeadID: *leadID, Notes: *notes}
	if *validUntil != "" {
		t, err := parseDate("valid-until", *validUntil)
		if err != nil {
			return err
		}
		req.ValidUntil = &t
	}
	svc, err := a.quoteService(ctx)
	if err != nil {
		return err
	}
	q, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "quote %s: %s for %d traveller(s), valid until %s\n",
		q.ID, money.FormatINR(q.FinalPrice), q.NumberOfTravelers, q.ValidUntil.Format(dateLayout))
	return nil
}

func (a *app) expiredQuotes(ctx context.Context) error {
	svc, err := a.quoteService(ctx)
	if err != nil {
		return err
	}
	expired, err := svc.Expired(ctx)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		fmt.Fprintln(a.out, "no expired quotes")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUOTE\tLEAD\tSTATUS\tVALID UNTIL\tFINAL")
	for _, q := range expired {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", q.ID, q.LeadID, q.Status, q.ValidUntil.Format(dateLayout), money.FormatINR(q.FinalPrice))
	}
	return tw.Flush()
}

func (a *app) quotePDF(ctx context.Context, args []string) error {
	fs := newFlagSet("quotes pdf")
	id := fs.String("id", "", "quote id")
	outPath := fs.String("out", "", "write the PDF here instead of the documents bucket")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	d, err := a.quoteDocument(ctx, *id)
	if err != nil {
		return err
	}

	bucket := strings.TrimSpace(a.cfg.QuoteDocumentsBucket)
	if *outPath == "" && bucket != "" {
		awsCfg, err := awsconfig.Load(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		publisher := document.NewPublisher(document.PublisherConfig{
			S3:     awsconfig.NewS3Client(awsCfg, a.cfg),
			Bucket: bucket,
			Logger: a.logger,
		})
		key, err := publisher.Publish(ctx, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "published s3://%s/%s\n", bucket, key)
		return nil
	}

	body, err := document.Render(d)
	if err != nil {
		return err
	}
	path := *outPath
	if path == "" {
		path = d.Filename()
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(a.out, "wrote %s (%d bytes)\n", path, len(body))
	return nil
}

// quoteDocument resolves the display names for a quote. Missing references
// leave the names blank rather than failing the render.
func (a *app) quoteDocument(ctx context.Context, id string) (document.QuoteDocument, error) {
	svc, err := a.quoteService(ctx)
	if err != nil {
		return document.QuoteDocument{}, err
	}
	q, err := svc.Get(ctx, id)
	if err != nil {
		return document.QuoteDocument{}, err
	}
	d := document.QuoteDocument{Quote: q, IssuedAt: a.now()}

	if lead, err := a.leads.Get(ctx, q.LeadID); err == nil {
		d.CustomerName, d.CustomerEmail = lead.Name, lead.Email
	} else {
		a.logger.Warn("quote pdf: lead lookup failed", "lead_id", q.LeadID, "error", err)
	}
	if ev, err := a.catalog.GetEvent(ctx, q.EventID); err == nil {
		d.EventName, d.EventLocation = ev.Name, ev.Location
	}
	if pkg, err := a.catalog.GetPackage(ctx, q.PackageID); err == nil {
		d.PackageName, d.Tier = pkg.Name, string(pkg.Tier)
	}
	return d, nil
}

func (a *app) dashboard(ctx context.Context) error {
	source, err := a.dashboardSource(ctx)
	if err != nil {
		return err
	}
	stats, err := source.Stats(ctx)
	if err != nil {
		return err
	}
	revenue, err := source.Revenue(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total leads\t%d\n", stats.TotalLeads)
	fmt.Fprintf(tw, "Leads trend (30d)\t%+.1f%%\n", stats.LeadsTrend)
	fmt.Fprintf(tw, "Conversion rate\t%.1f%%\n", stats.ConversionRate)
	fmt.Fprintf(tw, "Active events\t%d\n", stats.ActiveEvents)
	fmt.Fprintf(tw, "Packages\t%d\n", stats.TotalPackages)
	b := stats.StatusBreakdown
	fmt.Fprintf(tw, "By status\tnew %d, contacted %d, quote sent %d, interested %d, won %d, lost %d\n",
		b.New, b.Contacted, b.QuoteSent, b.Interested, b.ClosedWon, b.ClosedLost)
	fmt.Fprintf(tw, "Revenue (accepted)\t%s from %d quote(s)\n", money.FormatINR(revenue.TotalRevenue), revenue.AcceptedQuotesCount)
	fmt.Fprintf(tw, "Pending\t%s from %d quote(s)\n", money.FormatINR(revenue.PendingRevenue), revenue.PendingQuotesCount)
	fmt.Fprintf(tw, "Average quote\t%s\n", money.FormatINR(revenue.AverageQuoteValue))
	return tw.Flush()
}
