// Command portal is the terminal client for the internship portal. Each
// subcommand corresponds to one view of the portal; the session guard runs
// before any view issues a request.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/api"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/config"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/controller"
	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	"go.uber.org/zap"
)

type app struct {
	users        *controller.UserService
	vacancies    *controller.VacancyService
	applications *controller.ApplicationService
	ratings      *controller.RatingService
	areas        *controller.AreaService
	guard        *session.Guard
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the client configuration file")
	flag.Parse()

	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	store := session.NewFileStore(cfg.SessionFile)
	guard := session.NewGuard(store, logger)
	client := api.NewClient(
		cfg.APIBaseURL,
		session.NewCredentialSource(store),
		&http.Client{Timeout: cfg.RequestTimeout()},
		logger,
	)

	a := &app{
		users:        controller.NewUserService(client, store, guard, logger),
		vacancies:    controller.NewVacancyService(client, guard, logger),
		applications: controller.NewApplicationService(client, guard, logger),
		ratings:      controller.NewRatingService(client, guard, logger),
		areas:        controller.NewAreaService(client, guard, logger),
		guard:        guard,
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	if err := a.run(context.Background(), args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

// initLogger builds a production logger writing to stderr so command output
// on stdout stays clean.
func initLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	return logger
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.users.Logout(); err != nil {
			return err
		}
		fmt.Println("Session cleared.")
		return nil
	case "register-student":
		return a.registerStudent(ctx, args)
	case "register-company":
		return a.registerCompany(ctx, args)
	case "meu-perfil":
		return a.myProfile(ctx)
	case "editar-perfil":
		return a.editProfile(ctx, args)
	case "vagas":
		return a.browse(ctx)
	case "vaga":
		return a.detail(ctx, args)
	case "apply":
		return a.apply(ctx, args)
	case "rate":
		return a.rate(ctx, args)
	case "minhas-inscricoes":
		return a.myApplications(ctx)
	case "minhas-avaliacoes":
		return a.myRatings(ctx)
	case "minhas-vagas":
		return a.myVacancies(ctx)
	case "criar-vaga":
		return a.createVacancy(ctx, args)
	case "editar-vaga":
		return a.updateVacancy(ctx, args)
	case "encerrar":
		return a.closeVacancy(ctx, args)
	case "excluir-vaga":
		return a.deleteVacancy(ctx, args)
	case "inscricoes":
		return a.reviewBoard(ctx)
	case "set-status":
		return a.setStatus(ctx, args)
	case "areas":
		return a.areasCmd(ctx, args)
	case "admin-vagas":
		return a.adminVacancies(ctx)
	case "admin-usuarios":
		return a.adminUsers(ctx)
	case "admin-stats":
		return a.adminStats(ctx)
	case "delete-user":
		return a.deleteUser(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: portal login <email> <password>")
	}
	id, err := a.users.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s).\n", id.Name, id.Role)
	return nil
}

func (a *app) registerStudent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register-student", flag.ContinueOnError)
	reg := api.StudentRegistration{}
	fs.StringVar(&reg.Name, "nome", "", "full name")
	fs.StringVar(&reg.CPF, "cpf", "", "CPF")
	fs.StringVar(&reg.Course, "curso", "", "course")
	fs.StringVar(&reg.Email, "email", "", "email")
	fs.StringVar(&reg.Phone, "telefone", "", "phone")
	fs.StringVar(&reg.Password, "senha", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.users.RegisterStudent(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Printf("Student account created (id=%d). Log in to continue.\n", p.ID)
	return nil
}

func (a *app) registerCompany(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register-company", flag.ContinueOnError)
	reg := api.CompanyRegistration{}
	fs.StringVar(&reg.Name, "nome", "", "company name")
	fs.StringVar(&reg.CNPJ, "cnpj", "", "CNPJ")
	fs.StringVar(&reg.Email, "email", "", "email")
	fs.StringVar(&reg.Phone, "telefone", "", "phone")
	fs.StringVar(&reg.Password, "senha", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.users.RegisterCompany(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Printf("Company account created (id=%d). Log in to continue.\n", p.ID)
	return nil
}

// sessionRole resolves the logged-in actor for role-dispatched commands.
func (a *app) sessionRole() (models.Role, error) {
	st, d := a.guard.Check()
	if d != session.Allow {
		return "", e.ErrNoSession
	}
	return st.Identity.Role, nil
}

func (a *app) myProfile(ctx context.Context) error {
	role, err := a.sessionRole()
	if err != nil {
		return err
	}
	switch role {
	case models.RoleStudent:
		p, err := a.users.MyStudentProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("#%d  %s\n  curso: %s\n  email: %s\n  telefone: %s\n",
			p.ID, p.Name, p.Course, p.Email, p.Phone)
		return nil
	case models.RoleCompany:
		p, err := a.users.MyCompanyProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("#%d  %s\n  cnpj: %s\n  email: %s\n  telefone: %s\n",
			p.ID, p.Name, p.CNPJ, p.Email, p.Phone)
		return nil
	default:
		return e.ErrForbiddenRole
	}
}

func (a *app) editProfile(ctx context.Context, args []string) error {
	role, err := a.sessionRole()
	if err != nil {
		return err
	}
	switch role {
	case models.RoleStudent:
		fs := flag.NewFlagSet("editar-perfil", flag.ContinueOnError)
		p := models.StudentProfile{}
		fs.StringVar(&p.Name, "nome", "", "full name")
		fs.StringVar(&p.CPF, "cpf", "", "CPF")
		fs.StringVar(&p.Course, "curso", "", "course")
		fs.StringVar(&p.Email, "email", "", "email")
		fs.StringVar(&p.Phone, "telefone", "", "phone")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.users.UpdateMyStudentProfile(ctx, p); err != nil {
			return err
		}
	case models.RoleCompany:
		fs := flag.NewFlagSet("editar-perfil", flag.ContinueOnError)
		p := models.CompanyProfile{}
		fs.StringVar(&p.Name, "nome", "", "company name")
		fs.StringVar(&p.CNPJ, "cnpj", "", "CNPJ")
		fs.StringVar(&p.Email, "email", "", "email")
		fs.StringVar(&p.Phone, "telefone", "", "phone")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if _, err := a.users.UpdateMyCompanyProfile(ctx, p); err != nil {
			return err
		}
	default:
		return e.ErrForbiddenRole
	}
	fmt.Println("Profile updated.")
	return nil
}

func (a *app) browse(ctx context.Context) error {
	vacancies, err := a.vacancies.Browse(ctx)
	if err != nil {
		return err
	}
	if len(vacancies) == 0 {
		fmt.Println("No open vacancies.")
		return nil
	}
	for _, v := range vacancies {
		printVacancy(v)
	}
	return nil
}

func (a *app) detail(ctx context.Context, args []string) error {
	id, err := parseID(args, "vaga")
	if err != nil {
		return err
	}
	d, err := a.vacancies.Detail(ctx, id)
	if err != nil {
		return err
	}
	printVacancy(d.Vacancy)
	if d.Applied {
		fmt.Println("  (you already applied to this vacancy)")
	}
	if d.Stats != nil {
		fmt.Printf("  rating: %.1f across %d review(s)\n", d.Stats.MeanScore, len(d.Stats.Ratings))
		for _, r := range d.Stats.Ratings {
			fmt.Printf("    [%d/5] %s — %s\n", r.Score, r.Student.Name, r.Comment)
		}
	}
	return nil
}

func (a *app) apply(ctx context.Context, args []string) error {
	id, err := parseID(args, "apply")
	if err != nil {
		return err
	}
	app, err := a.applications.Apply(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Application %d submitted, status %s.\n", app.ID, app.Status)
	return nil
}

func (a *app) rate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: portal rate <vaga-id> <score 1-5> [comment]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid vacancy id %q", args[0])
	}
	score, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid score %q", args[1])
	}
	comment := strings.Join(args[2:], " ")
	if _, err := a.ratings.Rate(ctx, id, score, comment); err != nil {
		return err
	}
	fmt.Println("Rating submitted.")
	return nil
}

func (a *app) myApplications(ctx context.Context) error {
	apps, err := a.applications.MyApplications(ctx)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Println("You have no applications yet.")
		return nil
	}
	for _, app := range apps {
		fmt.Printf("#%d  %-30s  %s\n", app.ID, app.Vacancy.Title, app.Status)
	}
	return nil
}

func (a *app) myRatings(ctx context.Context) error {
	mine, err := a.ratings.MyRatings(ctx)
	if err != nil {
		return err
	}
	if len(mine.Ratings) == 0 {
		fmt.Println("You have not rated any vacancy yet.")
		return nil
	}
	for _, r := range mine.Ratings {
		title := ""
		if r.Vacancy != nil {
			title = r.Vacancy.Title
		}
		fmt.Printf("[%d/5] %-30s %s\n", r.Score, title, r.Comment)
	}
	fmt.Printf("Average given: %s (%s)\n", mine.DisplayMean(), strings.Repeat("*", mine.Stars()))
	return nil
}

func (a *app) myVacancies(ctx context.Context) error {
	vacancies, err := a.vacancies.Mine(ctx)
	if err != nil {
		return err
	}
	if len(vacancies) == 0 {
		fmt.Println("Your company has no vacancies yet.")
		return nil
	}
	for _, v := range vacancies {
		printVacancy(v)
	}
	return nil
}

func (a *app) createVacancy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("criar-vaga", flag.ContinueOnError)
	draft := controller.VacancyDraft{}
	var modality string
	fs.StringVar(&draft.Title, "titulo", "", "title")
	fs.StringVar(&draft.Description, "descricao", "", "description")
	fs.StringVar(&draft.Location, "localizacao", "", "location")
	fs.StringVar(&modality, "modalidade", "", "Presencial, Remoto or Híbrido")
	fs.IntVar(&draft.WeeklyHours, "carga-horaria", 20, "weekly hours")
	fs.StringVar(&draft.Requirements, "requisitos", "", "requirements")
	fs.Int64Var(&draft.AreaID, "area", 0, "interest area id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	draft.Modality = models.Modality(modality)
	v, err := a.vacancies.Create(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Printf("Vacancy %d created.\n", v.ID)
	return nil
}

func (a *app) updateVacancy(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: portal editar-vaga <id> [flags]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid vacancy id %q", args[0])
	}
	fs := flag.NewFlagSet("editar-vaga", flag.ContinueOnError)
	draft := controller.VacancyDraft{}
	var modality string
	fs.StringVar(&draft.Title, "titulo", "", "title")
	fs.StringVar(&draft.Description, "descricao", "", "description")
	fs.StringVar(&draft.Location, "localizacao", "", "location")
	fs.StringVar(&modality, "modalidade", "", "Presencial, Remoto or Híbrido")
	fs.IntVar(&draft.WeeklyHours, "carga-horaria", 20, "weekly hours")
	fs.StringVar(&draft.Requirements, "requisitos", "", "requirements")
	fs.Int64Var(&draft.AreaID, "area", 0, "interest area id")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	draft.Modality = models.Modality(modality)
	if _, err := a.vacancies.Update(ctx, id, draft); err != nil {
		return err
	}
	fmt.Printf("Vacancy %d updated.\n", id)
	return nil
}

func (a *app) closeVacancy(ctx context.Context, args []string) error {
	id, err := parseID(args, "encerrar")
	if err != nil {
		return err
	}
	if err := a.vacancies.Close(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Vacancy %d closed.\n", id)
	return nil
}

func (a *app) deleteVacancy(ctx context.Context, args []string) error {
	id, err := parseID(args, "excluir-vaga")
	if err != nil {
		return err
	}
	if err := a.vacancies.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Vacancy %d deleted.\n", id)
	return nil
}

func (a *app) reviewBoard(ctx context.Context) error {
	board, err := a.applications.ReviewBoard(ctx)
	if err != nil {
		return err
	}
	for _, entry := range board {
		state := "open"
		if !entry.Vacancy.Open {
			state = "closed"
		}
		fmt.Printf("%s (#%d, %s): %d application(s)\n",
			entry.Vacancy.Title, entry.Vacancy.ID, state, len(entry.Applications))
		for _, app := range entry.Applications {
			fmt.Printf("  #%d  %-25s  %s\n", app.ID, app.Student.Name, app.Status)
		}
	}
	return nil
}

func (a *app) setStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: portal set-status <inscricao-id> <PENDENTE|APROVADO|REJEITADO>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid application id %q", args[0])
	}
	// the review board must be loaded so the transition can be validated
	if _, err := a.applications.ReviewBoard(ctx); err != nil {
		return err
	}
	status := models.ApplicationStatus(strings.ToUpper(args[1]))
	if err := a.applications.SetStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Printf("Application %d is now %s.\n", id, status)
	return nil
}

func (a *app) areasCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		areas, err := a.areas.List(ctx)
		if err != nil {
			return err
		}
		for _, area := range areas {
			fmt.Printf("#%d  %-25s %s\n", area.ID, area.Name, area.Description)
		}
		return nil
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: portal areas create <name> [description]")
		}
		area, err := a.areas.Create(ctx, args[1], strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Area %d created.\n", area.ID)
		return nil
	case "update":
		if len(args) < 3 {
			return fmt.Errorf("usage: portal areas update <id> <name> [description]")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid area id %q", args[1])
		}
		if _, err := a.areas.Update(ctx, id, args[2], strings.Join(args[3:], " ")); err != nil {
			return err
		}
		fmt.Println("Area updated.")
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: portal areas delete <id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid area id %q", args[1])
		}
		if err := a.areas.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Println("Area deleted.")
		return nil
	default:
		return fmt.Errorf("unknown areas subcommand %q", args[0])
	}
}

func (a *app) adminVacancies(ctx context.Context) error {
	vacancies, err := a.vacancies.All(ctx)
	if err != nil {
		return err
	}
	for _, v := range vacancies {
		printVacancy(v)
	}
	return nil
}

func (a *app) adminUsers(ctx context.Context) error {
	users, err := a.users.Directory(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("#%d  %-25s %s\n", u.ID, u.Name, u.Role)
	}
	return nil
}

func (a *app) adminStats(ctx context.Context) error {
	stats, err := a.users.DashboardStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Companies: %d\nStudents: %d\nOpen vacancies: %d\nClosed vacancies: %d\n",
		stats.TotalCompanies, stats.TotalStudents, stats.OpenVacancies, stats.ClosedVacancies)
	if len(stats.ByArea) > 0 {
		fmt.Println("Vacancies by area:")
		for _, row := range stats.ByArea {
			fmt.Printf("  %-25s %d\n", row.AreaName, row.Count)
		}
	}
	return nil
}

func (a *app) deleteUser(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: portal delete-user <id> <estudante|empresa|admin>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	if err := a.users.DeleteUser(ctx, id, models.Role(args[1])); err != nil {
		return err
	}
	fmt.Println("User removed.")
	return nil
}

func parseID(args []string, cmd string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: portal %s <id>", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printVacancy(v models.Vacancy) {
	state := "open"
	if !v.Open {
		state = "closed"
	}
	fmt.Printf("#%d  %-30s  %s", v.ID, v.Title, state)
	if v.Company.Name != "" {
		fmt.Printf("  (%s)", v.Company.Name)
	}
	if v.Modality != models.ModalityUnset {
		fmt.Printf("  [%s, %dh/week]", v.Modality, v.WeeklyHours)
	}
	fmt.Println()
}

// renderError maps the error taxonomy onto user-facing messages.
func renderError(err error) string {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, e.ErrNoSession):
		return "No active session. Run 'portal login <email> <password>' first."
	case errors.Is(err, e.ErrForbiddenRole):
		return "This view is not available for your role."
	case errors.Is(err, e.ErrAlreadyApplied):
		return "You already applied to this vacancy."
	case errors.Is(err, e.ErrAlreadyRated):
		return "You already rated this vacancy."
	case errors.Is(err, e.ErrInvalidTransition):
		return "This application already reached a final decision."
	case errors.As(err, &apiErr) && errors.Is(err, e.ErrUnauthorized):
		return "Your session was rejected by the server. Please log in again."
	case errors.As(err, &apiErr) && errors.Is(err, e.ErrNotFound):
		return "Not found."
	case errors.As(err, &apiErr) && errors.Is(err, e.ErrInvalidInput):
		return apiErr.Message("The server rejected the request. Check the data and try again.")
	case errors.Is(err, e.ErrUnavailable):
		return "Could not reach the server. Check your connection and try again."
	default:
		return err.Error()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: portal [-config file] <command> [args]

account    login, logout, register-student, register-company,
           meu-perfil, editar-perfil
student    vagas, vaga <id>, apply <id>, rate <id> <nota> [comment],
           minhas-inscricoes, minhas-avaliacoes
company    minhas-vagas, criar-vaga, editar-vaga <id>, encerrar <id>,
           excluir-vaga <id>, inscricoes, set-status <id> <status>
admin      admin-vagas, admin-usuarios, admin-stats, delete-user <id> <role>,
           areas [list|create|update|delete]`)
}
