package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"compass-field-client/internal/api"
	"compass-field-client/internal/config"
	"compass-field-client/internal/domain"
	"compass-field-client/internal/gateway"
	"compass-field-client/internal/logger"
	"compass-field-client/internal/router"
	"compass-field-client/internal/session"
	"compass-field-client/internal/store"

	"github.com/spf13/pflag"
)

const usage = `fieldtrack - field service tracking client

Usage:
  fieldtrack [--config PATH] <command> [flags]

Commands:
  status               show session state and the screen it resolves to
  login                sign in (--email, --password, --admin for admin login)
  logout               sign out and clear the persisted session
  whoami               show the signed-in user, role and token expiry

  register-distributor register a distributor (admin)
  register-company     register a company (public, or distributor via --refer-code)
  register-technician  register a technician under your company (company)

  distributors         list all distributors (admin)
  companies            list companies (admin: all, distributor: own)
  technicians          list technicians (admin: all, company: own)

  visits               list site visits (technician/company: own, admin: all)
  visit <id>           show one site visit in full detail
  create-visit         record a new site visit (technician)
  upload-photos <id> <file>...  attach photos to a site visit (technician)
`

// app bundles the long-lived objects every command needs. Everything is
// wired once at boot and passed explicitly; there are no package globals
// beyond the logger.
type app struct {
	cfg     *config.Config
	session *session.Manager
	auth    *api.AuthAPI
	visits  *api.SiteVisitAPI
	dir     *api.DirectoryAPI
}

func main() {
	flags := pflag.NewFlagSet("fieldtrack", pflag.ExitOnError)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := flags.String("config", defaultConfigPath(), "path to configuration file")
	flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	st, err := store.NewFileStore(cfg.Session.Dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	gw := gateway.New(cfg, st)
	a := &app{
		cfg:     cfg,
		session: session.NewManager(st),
		auth:    api.NewAuthAPI(gw),
		visits:  api.NewSiteVisitAPI(gw),
		dir:     api.NewDirectoryAPI(gw),
	}

	ctx := context.Background()
	// Hydration gates everything: no command runs against a Hydrating session.
	a.session.Hydrate(ctx)

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		// One human-readable message per failure, like the app's alert modal.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "status":
		return a.cmdStatus()
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "register-distributor":
		return a.cmdRegisterDistributor(ctx, args)
	case "register-company":
		return a.cmdRegisterCompany(ctx, args)
	case "register-technician":
		return a.cmdRegisterTechnician(ctx, args)
	case "distributors":
		return a.cmdDistributors(ctx)
	case "companies":
		return a.cmdCompanies(ctx)
	case "technicians":
		return a.cmdTechnicians(ctx)
	case "visits":
		return a.cmdVisits(ctx)
	case "visit":
		return a.cmdVisit(ctx, args)
	case "create-visit":
		return a.cmdCreateVisit(ctx, args)
	case "upload-photos":
		return a.cmdUploadPhotos(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// require redirects the command through the role router: the command runs
// only when the session actually resolves to the screen it belongs to.
func (a *app) require(want router.Route) error {
	snap := a.session.Snapshot()
	granted, redirected := router.Authorize(want, snap)
	if !redirected {
		return nil
	}
	if granted == router.RouteLanding {
		return errors.New("you are not signed in; run 'fieldtrack login' first")
	}
	return fmt.Errorf("not available for your role (your screen is %s)", granted)
}

func (a *app) cmdStatus() error {
	snap := a.session.Snapshot()
	fmt.Println("state: ", snap.State)
	fmt.Println("screen:", router.Resolve(snap))
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ExitOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	admin := flags.Bool("admin", false, "use the admin login path")
	flags.Parse(args)

	var result *api.LoginResult
	var err error
	if *admin {
		result, err = a.auth.AdminLogin(ctx, *email, *password)
	} else {
		result, err = a.auth.Login(ctx, *email, *password)
	}
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, result.Token, result.User, result.Role); err != nil {
		return err
	}
	fmt.Printf("Welcome, %s! (%s)\n", result.User.Name, result.Role)
	fmt.Println("screen:", router.Resolve(a.session.Snapshot()))
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	a.session.Logout(ctx)
	// Logout always lands on the unauthenticated entry screen.
	fmt.Println("screen:", router.Resolve(a.session.Snapshot()))
	return nil
}

func (a *app) cmdWhoami() error {
	snap := a.session.Snapshot()
	if !snap.IsSignedIn() {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> id=%d role=%s\n", snap.User.Name, snap.User.Email, snap.User.ID, snap.Role)
	if snap.User.ReferCode != "" {
		fmt.Println("refer code:", snap.User.ReferCode)
	}
	if exp, ok := a.session.TokenExpiry(); ok {
		fmt.Println("session expires:", exp.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *app) cmdRegisterDistributor(ctx context.Context, args []string) error {
	if err := a.require(router.RouteAdminDashboard); err != nil {
		return err
	}
	flags := pflag.NewFlagSet("register-distributor", pflag.ExitOnError)
	req := &api.DistributorRegistration{}
	flags.StringVar(&req.Name, "name", "", "distributor name")
	flags.StringVar(&req.Email, "email", "", "email")
	flags.StringVar(&req.MobileNumber, "mobile", "", "mobile number")
	flags.StringVar(&req.Password, "password", "", "password")
	flags.StringVar(&req.ConfirmPassword, "confirm-password", "", "password again")
	flags.Parse(args)

	if err := a.auth.RegisterDistributor(ctx, req); err != nil {
		return err
	}
	fmt.Println("Distributor registered.")
	return nil
}

func (a *app) cmdRegisterCompany(ctx context.Context, args []string) error {
	// Public self-registration: allowed both signed out and for a signed-in
	// distributor sponsoring a company under its own refer code.
	flags := pflag.NewFlagSet("register-company", pflag.ExitOnError)
	req := &api.CompanyRegistration{}
	flags.StringVar(&req.CompanyName, "name", "", "company name")
	flags.StringVar(&req.CompanyEmail, "email", "", "company email")
	flags.StringVar(&req.GSTNumber, "gst", "", "GST number")
	flags.StringVar(&req.MobileNumber, "mobile", "", "mobile number")
	flags.StringVar(&req.CompanyAddress, "address", "", "company address")
	flags.StringVar(&req.Password, "password", "", "password")
	flags.StringVar(&req.ConfirmPassword, "confirm-password", "", "password again")
	flags.StringVar(&req.ReferCode, "refer-code", "", "sponsoring distributor's refer code (optional)")
	flags.Parse(args)

	snap := a.session.Snapshot()
	if req.ReferCode == "" && snap.IsSignedIn() && snap.Role == domain.RoleDistributor {
		req.ReferCode = snap.User.ReferCode
	}

	if err := a.auth.RegisterCompany(ctx, req); err != nil {
		return err
	}
	fmt.Println("Company registered.")
	return nil
}

func (a *app) cmdRegisterTechnician(ctx context.Context, args []string) error {
	if err := a.require(router.RouteCompanyDashboard); err != nil {
		return err
	}
	flags := pflag.NewFlagSet("register-technician", pflag.ExitOnError)
	req := &api.TechnicianRegistration{}
	flags.StringVar(&req.Name, "name", "", "technician name")
	flags.StringVar(&req.Email, "email", "", "email")
	flags.StringVar(&req.MobileNumber, "mobile", "", "mobile number")
	flags.StringVar(&req.Password, "password", "", "password")
	flags.StringVar(&req.ConfirmPassword, "confirm-password", "", "password again")
	flags.Parse(args)

	snap := a.session.Snapshot()
	if err := a.auth.RegisterTechnician(ctx, snap.User.ID, req); err != nil {
		return err
	}
	fmt.Println("Technician registered.")
	return nil
}

func (a *app) cmdDistributors(ctx context.Context) error {
	if err := a.require(router.RouteAdminDashboard); err != nil {
		return err
	}
	distributors, err := a.dir.Distributors(ctx)
	if err != nil {
		return err
	}
	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tMOBILE\tREFER CODE")
	for _, d := range distributors {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Email, d.MobileNumber, d.ReferCode)
	}
	return w.Flush()
}

func (a *app) cmdCompanies(ctx context.Context) error {
	snap := a.session.Snapshot()
	var companies []domain.Company
	var err error
	switch snap.Role {
	case domain.RoleAdmin:
		if err := a.require(router.RouteAdminDashboard); err != nil {
			return err
		}
		companies, err = a.dir.Companies(ctx)
	case domain.RoleDistributor:
		if err := a.require(router.RouteDistributorDashboard); err != nil {
			return err
		}
		companies, err = a.dir.DistributorCompanies(ctx, snap.User.ID)
	default:
		return a.require(router.RouteAdminDashboard)
	}
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tDISTRIBUTOR\tTECHNICIANS")
	for _, c := range companies {
		sponsor := "-"
		if c.Sponsored() && c.DistributorName != nil {
			sponsor = *c.DistributorName
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", c.ID, c.CompanyName, c.Email, sponsor, c.TechnicianCount)
	}
	return w.Flush()
}

func (a *app) cmdTechnicians(ctx context.Context) error {
	snap := a.session.Snapshot()
	var technicians []domain.Technician
	var err error
	switch snap.Role {
	case domain.RoleAdmin:
		if err := a.require(router.RouteAdminDashboard); err != nil {
			return err
		}
		technicians, err = a.dir.Technicians(ctx)
	case domain.RoleCompany:
		if err := a.require(router.RouteCompanyDashboard); err != nil {
			return err
		}
		technicians, err = a.dir.CompanyTechnicians(ctx, snap.User.ID)
	default:
		return a.require(router.RouteAdminDashboard)
	}
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tMOBILE")
	for _, t := range technicians {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Name, t.Email, t.MobileNumber)
	}
	return w.Flush()
}

func (a *app) cmdVisits(ctx context.Context) error {
	snap := a.session.Snapshot()
	var visits []domain.SiteVisit
	var err error
	switch snap.Role {
	case domain.RoleTechnician:
		if err := a.require(router.RouteTechnicianDashboard); err != nil {
			return err
		}
		visits, err = a.visits.ListByTechnician(ctx, snap.User.ID)
	case domain.RoleCompany:
		if err := a.require(router.RouteCompanyDashboard); err != nil {
			return err
		}
		visits, err = a.visits.ListByCompany(ctx, snap.User.ID)
	case domain.RoleAdmin:
		if err := a.require(router.RouteAdminDashboard); err != nil {
			return err
		}
		visits, err = a.visits.ListAll(ctx)
	default:
		return a.require(router.RouteTechnicianDashboard)
	}
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tCITY\tAREA\tCABLES\tPHOTOS")
	for _, v := range visits {
		evidence := "pending"
		if v.HasPhotos() {
			evidence = fmt.Sprintf("%d uploaded", len(v.Photos))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", v.ID, v.City, v.Area, len(v.CableConnections), evidence)
	}
	return w.Flush()
}

func (a *app) cmdVisit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: fieldtrack visit <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	snap := a.session.Snapshot()
	var companyID *int32
	switch snap.Role {
	case domain.RoleCompany:
		if err := a.require(router.RouteCompanyDashboard); err != nil {
			return err
		}
		cid := snap.User.ID
		companyID = &cid
	case domain.RoleAdmin:
		if err := a.require(router.RouteAdminDashboard); err != nil {
			return err
		}
	default:
		return a.require(router.RouteAdminDashboard)
	}

	visit, err := a.visits.Get(ctx, id, companyID)
	if err != nil {
		return err
	}

	fmt.Printf("Site visit #%d\n", visit.ID)
	fmt.Printf("  location: %.6f, %.6f\n", visit.Latitude, visit.Longitude)
	fmt.Printf("  address:  %s\n", formatAddress(visit.Location))
	fmt.Printf("  cable connections (%d):\n", len(visit.CableConnections))
	for _, c := range visit.CableConnections {
		fmt.Printf("    core %d: %s -> %s (%s)\n", c.CoreNumber, c.FromColor, c.ToColor, c.Reason)
	}
	if visit.HasPhotos() {
		fmt.Printf("  photos (%d):\n", len(visit.Photos))
		for _, p := range visit.Photos {
			fmt.Printf("    %s  %s\n", p.PhotoName, p.ResolveURL(a.cfg.API.BaseURL))
		}
	} else {
		fmt.Println("  photos: none uploaded yet")
	}
	return nil
}

func (a *app) cmdCreateVisit(ctx context.Context, args []string) error {
	if err := a.require(router.RouteTechnicianDashboard); err != nil {
		return err
	}
	flags := pflag.NewFlagSet("create-visit", pflag.ExitOnError)
	req := &api.CreateSiteVisitRequest{}
	flags.Float64Var(&req.Latitude, "lat", 0, "latitude")
	flags.Float64Var(&req.Longitude, "lng", 0, "longitude")
	flags.StringVar(&req.HouseNo, "house", "", "house number")
	flags.StringVar(&req.Area, "area", "", "area")
	flags.StringVar(&req.Street, "street", "", "street")
	flags.StringVar(&req.Landmark, "landmark", "", "landmark (optional)")
	flags.StringVar(&req.City, "city", "", "city")
	flags.StringVar(&req.State, "state", "", "state")
	flags.StringVar(&req.Pincode, "pincode", "", "pincode")
	cables := flags.StringArray("cable", nil, "wiring change as core:from:to:reason (repeatable)")
	flags.Parse(args)

	for _, spec := range *cables {
		conn, err := parseCable(spec)
		if err != nil {
			return err
		}
		req.CableConnections = append(req.CableConnections, conn)
	}

	snap := a.session.Snapshot()
	visit, err := a.visits.Create(ctx, snap.User.ID, req)
	if err != nil {
		return err
	}
	fmt.Printf("Site visit #%d recorded. Attach photos with 'fieldtrack upload-photos %d <file>...'\n", visit.ID, visit.ID)
	return nil
}

func (a *app) cmdUploadPhotos(ctx context.Context, args []string) error {
	if err := a.require(router.RouteTechnicianDashboard); err != nil {
		return err
	}
	if len(args) < 1 {
		return errors.New("usage: fieldtrack upload-photos <visit-id> <file>...")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var files []gateway.File
	var closers []*os.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, path := range args[1:] {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open photo: %w", err)
		}
		closers = append(closers, f)
		files = append(files, gateway.File{Name: filepath.Base(path), Reader: f})
	}

	if err := a.visits.UploadPhotos(ctx, id, files); err != nil {
		return err
	}
	fmt.Printf("Uploaded %d photo(s) to site visit #%d.\n", len(files), id)
	return nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func parseID(s string) (int32, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return int32(id), nil
}

func parseCable(spec string) (domain.CableConnection, error) {
	parts := strings.SplitN(spec, ":", 4)
	if len(parts) != 4 {
		return domain.CableConnection{}, fmt.Errorf("invalid cable spec %q, want core:from:to:reason", spec)
	}
	core, err := strconv.Atoi(parts[0])
	if err != nil {
		return domain.CableConnection{}, fmt.Errorf("invalid core number in %q", spec)
	}
	return domain.CableConnection{
		CoreNumber: core,
		FromColor:  parts[1],
		ToColor:    parts[2],
		Reason:     parts[3],
	}, nil
}

func formatAddress(l domain.Location) string {
	parts := []string{l.HouseNo, l.Street, l.Area}
	if l.Landmark != "" {
		parts = append(parts, "near "+l.Landmark)
	}
	parts = append(parts, l.City, l.State, l.Pincode)
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func defaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "fieldtrack.yaml"
	}
	return filepath.Join(base, "fieldtrack", "config.yaml")
}
