// Package models defines the core domain models for the internship portal:
// identities, vacancies, applications, ratings, and interest areas, together
// with the application-status state machine.
package models

// Role identifies the kind of actor behind a session.
type Role string

const (
	// RoleStudent is an internship candidate.
	RoleStudent Role = "estudante"
	// RoleCompany is a company posting vacancies.
	RoleCompany Role = "empresa"
	// RoleAdmin manages reference data and aggregate views.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the three known roles. The backend has
// been observed emitting "ADMIN" in upper case, so comparison is handled by
// Normalize rather than here.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// Normalize maps backend spelling variants onto the canonical role values.
func (r Role) Normalize() Role {
	switch r {
	case "ADMIN":
		return RoleAdmin
	case "ESTUDANTE":
		return RoleStudent
	case "EMPRESA":
		return RoleCompany
	}
	return r
}

// Identity is the authenticated actor for the current session.
type Identity struct {
	// ID is the backend identifier of the actor.
	ID int64 `json:"id"`
	// Name is the display name returned at login time.
	Name string `json:"nome"`
	// Role is immutable for the lifetime of the session.
	Role Role `json:"role"`
}

// Modality describes where the internship work happens.
type Modality string

const (
	OnSite Modality = "Presencial"
	Remote Modality = "Remoto"
	Hybrid Modality = "Híbrido"
	// ModalityUnset is used when the posting company left the field blank.
	ModalityUnset Modality = ""
)

// CompanyRef is the owning-company reference embedded in vacancy payloads.
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"nome,omitempty"`
}

// StudentRef references the authoring student in applications and ratings.
type StudentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"nome,omitempty"`
}

// Vacancy is an internship posting owned by a company.
type Vacancy struct {
	ID           int64      `json:"id"`
	Title        string     `json:"titulo"`
	Description  string     `json:"descricao"`
	Location     string     `json:"localizacao"`
	Modality     Modality   `json:"modalidade"`
	WeeklyHours  int        `json:"cargaHoraria"`
	Requirements string     `json:"requisitos"`
	Company      CompanyRef `json:"empresa"`
	// Open transitions only true -> false, via the close operation.
	Open bool `json:"aberta"`
}

// MaxWeeklyHours bounds the cargaHoraria field.
const MaxWeeklyHours = 40

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	// StatusPending is the initial state, set at creation and never chosen
	// by the caller.
	StatusPending ApplicationStatus = "PENDENTE"
	// StatusApproved is terminal.
	StatusApproved ApplicationStatus = "APROVADO"
	// StatusRejected is terminal.
	StatusRejected ApplicationStatus = "REJEITADO"
)

// Valid reports whether s is a known status value.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether an application may move from one status to
// another. A same-state update is a permitted no-op; any move out of a
// terminal state is not.
func CanTransition(from, to ApplicationStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	return from == StatusPending
}

// Application is a student's candidature for one vacancy.
type Application struct {
	ID      int64      `json:"id"`
	Student StudentRef `json:"estudante"`
	Vacancy Vacancy    `json:"vaga"`
	// SubmittedAt is kept as the backend's date string; the client only
	// displays it.
	SubmittedAt string            `json:"dataInscricao,omitempty"`
	Status      ApplicationStatus `json:"status"`
}

// Rating is a 1-5 score plus optional comment a student leaves on a vacancy.
// Ratings are immutable once created.
type Rating struct {
	ID        int64      `json:"id"`
	Student   StudentRef `json:"estudante"`
	Vacancy   *Vacancy   `json:"vaga,omitempty"`
	Score     int        `json:"nota"`
	Comment   string     `json:"comentario"`
	CreatedAt string     `json:"dataAvaliacao"`
}

const (
	MinScore         = 1
	MaxScore         = 5
	MaxCommentLength = 500
)

// InterestArea is a taxonomy tag linking students' interests and companies'
// operating domains. Writes are admin-only.
type InterestArea struct {
	ID          int64  `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao,omitempty"`
}

// VacancyStats is the backend-computed aggregate for one vacancy. MeanScore
// is consumed verbatim; the client never recomputes it from Ratings.
type VacancyStats struct {
	Ratings   []Rating `json:"avaliacoes"`
	MeanScore float64  `json:"mediaNotas"`
}

// AreaCount is one row of the per-area vacancy breakdown.
type AreaCount struct {
	AreaID   int64  `json:"areaId"`
	AreaName string `json:"areaNome"`
	Count    int    `json:"count"`
}

// DashboardStats is the admin aggregate view.
type DashboardStats struct {
	TotalCompanies  int         `json:"totalEmpresas"`
	TotalStudents   int         `json:"totalEstudantes"`
	OpenVacancies   int         `json:"vagasAbertas"`
	ClosedVacancies int         `json:"vagasEncerradas"`
	ByArea          []AreaCount `json:"vagasPorArea"`
}

// User is one row of the admin user directory, merged from the three
// role-specific listings.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
	Role Role   `json:"role"`
}

// StudentProfile is the editable student record.
type StudentProfile struct {
	ID      int64   `json:"id"`
	Name    string  `json:"nome"`
	CPF     string  `json:"cpf,omitempty"`
	Course  string  `json:"curso,omitempty"`
	Email   string  `json:"email"`
	Phone   string  `json:"telefone,omitempty"`
	AreaIDs []int64 `json:"areaIds,omitempty"`
}

// CompanyProfile is the editable company record.
type CompanyProfile struct {
	ID      int64   `json:"id"`
	Name    string  `json:"nome"`
	CNPJ    string  `json:"cnpj,omitempty"`
	Email   string  `json:"email"`
	Phone   string  `json:"telefone,omitempty"`
	AreaIDs []int64 `json:"areaIds,omitempty"`
}
