// Package main — CLI komutları.
//
// Her komut kendi flag.FlagSet'ini parse eder ve service katmanını çağırır.
// Çıktı tabwriter ile hizalanmış tablo; hatalar pkg.Describe ile
// dashboard'daki hata paneliyle aynı başlık/mesaj/liste biçiminde yazılır.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
	"github.com/akinalp/kisalt/services"
)

// command, tek bir CLI alt komutu.
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

// commands, yardım çıktısındaki sırayla.
var commands = []command{
	{"login", "-email E -password P", cmdLogin},
	{"register", "-first AD -last SOYAD -email E -password P", cmdRegister},
	{"logout", "", cmdLogout},
	{"status", "", cmdStatus},
	{"list", "[-page N] [-size N]", cmdList},
	{"get", "-id ID", cmdGet},
	{"create", "-url URL [-title T] [-expires TARİH]", cmdCreate},
	{"update", "-id ID -url URL [-title T] [-expires TARİH]", cmdUpdate},
	{"delete", "-id ID", cmdDelete},
	{"stats", "", cmdStats},
	{"top", "[-range week|month|year]", cmdTop},
	{"analytics", "-code KOD [-range week|month|year]", cmdAnalytics},
	{"resolve", "-code KOD", cmdResolve},
	{"serve", "", func(ctx context.Context, a *app, _ []string) error { return serve(ctx, a) }},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer, loc *i18n.Localizer) {
	fmt.Fprintln(w, loc.T("cli.usage"))
	fmt.Fprintln(w, loc.T("cli.commands"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.usage)
	}
	tw.Flush()
}

// printError, hatayı başlık + mesaj + detay listesi + status satırı olarak yazar.
// Yerel doğrulama hataları alan mesajlarıyla yazılır.
func printError(w io.Writer, err error, loc *i18n.Localizer) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(w, loc.T("panel.badRequestTitle"))
		for _, m := range verr.Messages(loc) {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		return
	}

	view := pkg.Describe(err, loc)
	fmt.Fprintf(w, "%s: %s\n", view.Title, view.Message)
	for _, e := range view.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	if view.StatusLine != "" {
		fmt.Fprintln(w, view.StatusLine)
	}
}

// newFlags, hata çıktısı stderr'e giden ve ilk hatada dönen bir FlagSet.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// ─── Auth ───

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "e-posta")
	password := fs.String("password", "", "şifre (boşsa stdin'den okunur)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		p, err := readPassword(a.loc)
		if err != nil {
			return err
		}
		*password = p
	}

	if err := a.svcs.Auth.Login(ctx, &models.LoginRequest{Email: *email, Password: *password}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.loc.T("auth.loggedIn"))
	return printStatus(a)
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	req := &models.RegisterRequest{}
	fs.StringVar(&req.FirstName, "first", "", "ad")
	fs.StringVar(&req.LastName, "last", "", "soyad")
	fs.StringVar(&req.Email, "email", "", "e-posta")
	fs.StringVar(&req.Password, "password", "", "şifre (en az 6 karakter)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.svcs.Auth.Register(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.loc.T("auth.registered"))
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	if err := newFlags("logout").Parse(args); err != nil {
		return err
	}
	if err := a.svcs.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.loc.T("auth.loggedOut"))
	return nil
}

func cmdStatus(_ context.Context, a *app, args []string) error {
	if err := newFlags("status").Parse(args); err != nil {
		return err
	}
	return printStatus(a)
}

func printStatus(a *app) error {
	st := a.svcs.Auth.Status()
	if !st.Authenticated {
		fmt.Fprintf(a.out, "%s (%s)\n", a.loc.T("auth.statusOut"), st.Profile)
		return nil
	}

	fmt.Fprintf(a.out, "%s (%s)\n", a.loc.T("auth.statusIn"), st.Profile)
	if st.Email != "" {
		fmt.Fprintf(a.out, "  %s\n", st.Email)
	}
	if st.ExpiresAt != nil {
		fmt.Fprintf(a.out, "  exp: %s\n", st.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

func readPassword(loc *i18n.Localizer) (string, error) {
	fmt.Fprint(os.Stderr, loc.T("cli.passwordPrompt"))
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ─── URLs ───

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("list")
	page := fs.Int("page", services.DefaultPage, "sayfa")
	size := fs.Int("size", services.DefaultPageSize, "sayfa boyutu")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.svcs.URL.List(ctx, *page, *size)
	if err != nil {
		return err
	}

	// Son sayfanın ötesi boş liste döner; "kayıt yok" yerine aralığı bildir.
	if p := models.PaginationOf(result); p.Pages > 0 && !p.Allows(*page) {
		return fieldError("page", "cli.pageOutOfRange")
	}

	if len(result.Items) == 0 {
		fmt.Fprintln(a.out, a.loc.T("url.empty"))
		return nil
	}

	writeURLTable(a.out, a.loc, result.Items)
	fmt.Fprintln(a.out, paginationLine(a.loc, result))
	return nil
}

func cmdGet(ctx context.Context, a *app, args []string) error {
	fs := newFlags("get")
	id := fs.String("id", "", "URL kimliği")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.svcs.URL.Get(ctx, *id)
	if err != nil {
		return err
	}
	writeURLTable(a.out, a.loc, []models.ShortURL{*u})
	return nil
}

// urlFlags, create ve update'in ortak bayrakları.
type urlFlags struct {
	url, title, expires string
}

func (f *urlFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.url, "url", "", "hedef URL")
	fs.StringVar(&f.title, "title", "", "başlık")
	fs.StringVar(&f.expires, "expires", "", "son geçerlilik (2025-12-31 veya RFC 3339)")
}

// expiresAt, boş → nil (JSON'da null).
func (f *urlFlags) expiresAt() (*models.Timestamp, error) {
	if f.expires == "" {
		return nil, nil
	}
	ts, err := models.ParseTimestamp(f.expires)
	if err != nil {
		return nil, fieldError("expires", "cli.expiresInvalid")
	}
	return &ts, nil
}

func cmdCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("create")
	var f urlFlags
	f.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	expires, err := f.expiresAt()
	if err != nil {
		return err
	}

	u, err := a.svcs.URL.Create(ctx, &models.CreateURLRequest{
		Title:       f.title,
		OriginalURL: f.url,
		ExpiresAt:   expires,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.loc.T("url.created"))
	writeURLTable(a.out, a.loc, []models.ShortURL{*u})
	return nil
}

func cmdUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("update")
	id := fs.String("id", "", "URL kimliği")
	var f urlFlags
	f.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	expires, err := f.expiresAt()
	if err != nil {
		return err
	}

	u, err := a.svcs.URL.Update(ctx, *id, &models.UpdateURLRequest{
		Title:       f.title,
		OriginalURL: f.url,
		ExpiresAt:   expires,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.loc.T("url.updated"))
	writeURLTable(a.out, a.loc, []models.ShortURL{*u})
	return nil
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlags("delete")
	id := fs.String("id", "", "URL kimliği")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.svcs.URL.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.loc.T("url.deleted"))
	return nil
}

func cmdStats(ctx context.Context, a *app, args []string) error {
	if err := newFlags("stats").Parse(args); err != nil {
		return err
	}

	stats, err := a.svcs.URL.Stats(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", a.loc.T("cli.totalUrls"), stats.TotalURLs)
	fmt.Fprintf(tw, "%s\t%d\n", a.loc.T("cli.totalClicks"), stats.TotalClicks)
	fmt.Fprintf(tw, "%s\t%d\n", a.loc.T("cli.activeUrls"), stats.ActiveURLs)
	fmt.Fprintf(tw, "%s\t%d\n", a.loc.T("cli.recentUrls"), stats.RecentURLs)
	return tw.Flush()
}

// ─── Analytics ───

func rangeFlag(fs *flag.FlagSet) *string {
	return fs.String("range", string(models.RangeWeek), "week | month | year")
}

func parseRangeFlag(raw string) (models.DateRange, error) {
	r, err := models.ParseDateRange(raw)
	if err != nil {
		return "", fieldError("range", "validation.rangeInvalid")
	}
	return r, nil
}

// fieldError, bayrak doğrulama hatasını request doğrulamasıyla aynı tipe sarar.
func fieldError(field, key string) error {
	return &models.ValidationError{Fields: []models.FieldError{{Field: field, Key: key}}}
}

func cmdTop(ctx context.Context, a *app, args []string) error {
	fs := newFlags("top")
	raw := rangeFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := parseRangeFlag(*raw)
	if err != nil {
		return err
	}

	top, err := a.svcs.Analytics.TopURLs(ctx, r)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\t%s\t%s\n", a.loc.T("cli.shortCode"), a.loc.T("cli.title"), a.loc.T("cli.clicks"))
	for i, t := range top {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, t.ShortCode, t.Title, t.ClickCount)
	}
	return tw.Flush()
}

func cmdAnalytics(ctx context.Context, a *app, args []string) error {
	fs := newFlags("analytics")
	code := fs.String("code", "", "kısa kod")
	raw := rangeFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := parseRangeFlag(*raw)
	if err != nil {
		return err
	}

	an, err := a.svcs.Analytics.URLAnalytics(ctx, *code, r)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", a.loc.T("cli.shortCode"), an.ShortCode)
	fmt.Fprintf(tw, "%s\t%s\n", a.loc.T("cli.range"), r)
	fmt.Fprintf(tw, "%s\t%d\n", a.loc.T("cli.totalClicks"), an.TotalClicks)
	if an.UniqueVisitors != nil {
		fmt.Fprintf(tw, "%s\t%d\n", a.loc.T("cli.uniqueVisitors"), *an.UniqueVisitors)
	}
	if an.FirstClick != nil {
		fmt.Fprintf(tw, "%s\t%s\n", a.loc.T("cli.firstClick"), an.FirstClick.Local().Format(time.DateTime))
	}
	if an.LastClick != nil {
		fmt.Fprintf(tw, "%s\t%s\n", a.loc.T("cli.lastClick"), an.LastClick.Local().Format(time.DateTime))
	}
	for _, d := range an.DailyStats {
		fmt.Fprintf(tw, "  %s\t%d\n", d.Date, d.Count)
	}
	return tw.Flush()
}

// ─── Redirect ───

func cmdResolve(ctx context.Context, a *app, args []string) error {
	fs := newFlags("resolve")
	code := fs.String("code", "", "kısa kod")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target, err := a.svcs.Redirect.Resolve(ctx, *code)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, target)
	return nil
}

// ─── Output ───

func writeURLTable(w io.Writer, loc *i18n.Localizer, items []models.ShortURL) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\t%s\t%s\t%s\t%s\n",
		loc.T("cli.shortCode"), loc.T("cli.title"), loc.T("cli.target"), loc.T("cli.clicks"), loc.T("cli.expires"))
	for _, u := range items {
		expires := "-"
		if u.ExpiresAt != nil && !u.ExpiresAt.IsZero() {
			expires = u.ExpiresAt.Local().Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", u.ID, u.ShortCode, u.Title, u.OriginalURL, u.ClickCount, expires)
	}
	tw.Flush()
}

// paginationLine, ör: "Sayfa 2/3 (25 kayıt) · önceki: -page 1 · sonraki: -page 3".
// Devre dışı yön yazılmaz.
func paginationLine[T any](loc *i18n.Localizer, page *models.Page[T]) string {
	p := models.PaginationOf(page)
	parts := []string{loc.TWithParams("cli.page", map[string]string{
		"index": strconv.Itoa(page.Index),
		"pages": strconv.Itoa(max(page.Pages, 1)),
		"count": strconv.Itoa(page.Count),
	})}
	if p.Prev.Enabled {
		parts = append(parts, loc.TWithParams("cli.prev", map[string]string{"page": strconv.Itoa(p.Prev.Page)}))
	}
	if p.Next.Enabled {
		parts = append(parts, loc.TWithParams("cli.next", map[string]string{"page": strconv.Itoa(p.Next.Page)}))
	}
	return strings.Join(parts, " · ")
}
