package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type loginResponse struct {
	Token string      `json:"token"`
	ID    int64       `json:"id"`
	Name  string      `json:"nome"`
	Role  models.Role `json:"role"`
}

// LoginResult is the credential and identity minted by a successful login.
type LoginResult struct {
	Token    string
	Identity models.Identity
}

// Login exchanges credentials for a bearer token and identity. The request
// carries no Authorization header.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &LoginResult{
		Token: resp.Token,
		Identity: models.Identity{
			ID:   resp.ID,
			Name: resp.Name,
			Role: resp.Role.Normalize(),
		},
	}, nil
}

// StudentRegistration is the payload for the student signup endpoint.
type StudentRegistration struct {
	Name     string  `json:"nome"`
	CPF      string  `json:"cpf"`
	Course   string  `json:"curso"`
	Email    string  `json:"email"`
	Phone    string  `json:"telefone"`
	Password string  `json:"senha"`
	AreaIDs  []int64 `json:"areaIds,omitempty"`
}

// CompanyRegistration is the payload for the company signup endpoint.
type CompanyRegistration struct {
	Name     string  `json:"nome"`
	CNPJ     string  `json:"cnpj"`
	Email    string  `json:"email"`
	Phone    string  `json:"telefone"`
	Password string  `json:"senha"`
	AreaIDs  []int64 `json:"areaIds,omitempty"`
}

// RegisterStudent creates a student account. No Authorization header.
func (c *Client) RegisterStudent(ctx context.Context, reg StudentRegistration) (*models.StudentProfile, error) {
	var out models.StudentProfile
	if err := c.do(ctx, http.MethodPost, "/estudantes/registro", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterCompany creates a company account. No Authorization header.
func (c *Client) RegisterCompany(ctx context.Context, reg CompanyRegistration) (*models.CompanyProfile, error) {
	var out models.CompanyProfile
	if err := c.do(ctx, http.MethodPost, "/empresas/registro", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenVacancies lists vacancies still accepting applications.
func (c *Client) OpenVacancies(ctx context.Context) ([]models.Vacancy, error) {
	var out []models.Vacancy
	if err := c.do(ctx, http.MethodGet, "/vagas-estagio/abertas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllVacancies lists every vacancy regardless of owner or state.
func (c *Client) AllVacancies(ctx context.Context) ([]models.Vacancy, error) {
	var out []models.Vacancy
	if err := c.do(ctx, http.MethodGet, "/vagas-estagio", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VacanciesByCompany lists the vacancies owned by one company.
func (c *Client) VacanciesByCompany(ctx context.Context, companyID int64) ([]models.Vacancy, error) {
	var out []models.Vacancy
	path := fmt.Sprintf("/vagas-estagio/empresa/%d", companyID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Vacancy fetches one vacancy by id.
func (c *Client) Vacancy(ctx context.Context, id int64) (*models.Vacancy, error) {
	var out models.Vacancy
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/vagas-estagio/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VacancyRequest is the create/update payload for a vacancy.
type VacancyRequest struct {
	Title        string            `json:"titulo"`
	Description  string            `json:"descricao"`
	Location     string            `json:"localizacao,omitempty"`
	Modality     models.Modality   `json:"modalidade,omitempty"`
	WeeklyHours  int               `json:"cargaHoraria"`
	Requirements string            `json:"requisitos,omitempty"`
	AreaID       int64             `json:"areaId,omitempty"`
	Company      models.CompanyRef `json:"empresa"`
	Open         bool              `json:"aberta"`
}

// CreateVacancy posts a new vacancy owned by the given company.
func (c *Client) CreateVacancy(ctx context.Context, req VacancyRequest) (*models.Vacancy, error) {
	var out models.Vacancy
	if err := c.do(ctx, http.MethodPost, "/vagas-estagio", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVacancy replaces the stored vacancy fields.
func (c *Client) UpdateVacancy(ctx context.Context, id int64, req VacancyRequest) (*models.Vacancy, error) {
	var out models.Vacancy
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/vagas-estagio/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVacancy removes a vacancy permanently.
func (c *Client) DeleteVacancy(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/vagas-estagio/%d", id), nil, nil)
}

// CloseVacancy drives the vacancy's open flag from true to false. There is
// no inverse operation.
func (c *Client) CloseVacancy(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/vagas-estagio/%d/encerrar", id), nil, nil)
}

type applicationRequest struct {
	Student models.StudentRef `json:"estudante"`
	Vacancy struct {
		ID int64 `json:"id"`
	} `json:"vaga"`
}

// CreateApplication submits a student's candidature for a vacancy. The
// status is assigned server-side; the caller never chooses it.
func (c *Client) CreateApplication(ctx context.Context, studentID, vacancyID int64) (*models.Application, error) {
	req := applicationRequest{Student: models.StudentRef{ID: studentID}}
	req.Vacancy.ID = vacancyID
	var out models.Application
	if err := c.do(ctx, http.MethodPost, "/inscricoes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type statusUpdateRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

// UpdateApplicationStatus sets a new status for one application.
func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/inscricoes/%d", id), statusUpdateRequest{Status: status}, nil)
}

// ApplicationsByVacancy lists every application for one vacancy.
func (c *Client) ApplicationsByVacancy(ctx context.Context, vacancyID int64) ([]models.Application, error) {
	var out []models.Application
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/inscricoes/vaga/%d", vacancyID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplicationsByStudent lists every application one student has submitted.
func (c *Client) ApplicationsByStudent(ctx context.Context, studentID int64) ([]models.Application, error) {
	var out []models.Application
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/inscricoes/estudante/%d", studentID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RatingRequest is the payload for creating a rating.
type RatingRequest struct {
	Student models.StudentRef `json:"estudante"`
	Vacancy struct {
		ID int64 `json:"id"`
	} `json:"vaga"`
	Score   int    `json:"nota"`
	Comment string `json:"comentario,omitempty"`
}

// CreateRating posts a new rating. Ratings are immutable once created.
func (c *Client) CreateRating(ctx context.Context, studentID, vacancyID int64, score int, comment string) (*models.Rating, error) {
	req := RatingRequest{Student: models.StudentRef{ID: studentID}, Score: score, Comment: comment}
	req.Vacancy.ID = vacancyID
	var out models.Rating
	if err := c.do(ctx, http.MethodPost, "/avaliacoes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VacancyStats retrieves the rating list plus the backend-computed mean for
// one vacancy.
func (c *Client) VacancyStats(ctx context.Context, vacancyID int64) (*models.VacancyStats, error) {
	var out models.VacancyStats
	path := fmt.Sprintf("/avaliacoes/vaga/%d/estatisticas", vacancyID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RatingsByStudent lists every rating one student has given.
func (c *Client) RatingsByStudent(ctx context.Context, studentID int64) ([]models.Rating, error) {
	var out []models.Rating
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/avaliacoes/estudante/%d", studentID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Areas lists the interest-area taxonomy.
func (c *Client) Areas(ctx context.Context) ([]models.InterestArea, error) {
	var out []models.InterestArea
	if err := c.do(ctx, http.MethodGet, "/areas-interesse", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AreaRequest is the create/update payload for an interest area.
type AreaRequest struct {
	Name        string `json:"nome"`
	Description string `json:"descricao,omitempty"`
}

// CreateArea adds a taxonomy entry. Admin-only server-side.
func (c *Client) CreateArea(ctx context.Context, req AreaRequest) (*models.InterestArea, error) {
	var out models.InterestArea
	if err := c.do(ctx, http.MethodPost, "/areas-interesse", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateArea edits a taxonomy entry.
func (c *Client) UpdateArea(ctx context.Context, id int64, req AreaRequest) (*models.InterestArea, error) {
	var out models.InterestArea
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/areas-interesse/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteArea removes a taxonomy entry.
func (c *Client) DeleteArea(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/areas-interesse/%d", id), nil, nil)
}

// Students lists every student account.
func (c *Client) Students(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/estudantes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Companies lists every company account.
func (c *Client) Companies(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/empresas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Admins lists every administrator account.
func (c *Client) Admins(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/administradores", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StudentProfile fetches one student's editable record.
func (c *Client) StudentProfile(ctx context.Context, id int64) (*models.StudentProfile, error) {
	var out models.StudentProfile
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/estudantes/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStudentProfile saves one student's editable record.
func (c *Client) UpdateStudentProfile(ctx context.Context, id int64, p models.StudentProfile) (*models.StudentProfile, error) {
	var out models.StudentProfile
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/estudantes/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompanyProfile fetches one company's editable record.
func (c *Client) CompanyProfile(ctx context.Context, id int64) (*models.CompanyProfile, error) {
	var out models.CompanyProfile
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/empresas/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCompanyProfile saves one company's editable record.
func (c *Client) UpdateCompanyProfile(ctx context.Context, id int64, p models.CompanyProfile) (*models.CompanyProfile, error) {
	var out models.CompanyProfile
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/empresas/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account of the given role.
func (c *Client) DeleteUser(ctx context.Context, id int64, role models.Role) error {
	var path string
	switch role.Normalize() {
	case models.RoleStudent:
		path = fmt.Sprintf("/estudantes/%d", id)
	case models.RoleCompany:
		path = fmt.Sprintf("/empresas/%d", id)
	case models.RoleAdmin:
		path = fmt.Sprintf("/administradores/%d", id)
	default:
		return fmt.Errorf("delete user: unknown role %q", role)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// AdminDashboard fetches the aggregate counters and per-area breakdown.
func (c *Client) AdminDashboard(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/admin", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
