package handler

import (
	"database/sql"

	"marketapi/internal/http/middleware"
	"marketapi/internal/model"
	"marketapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Services bundles the business services behind the HTTP routes.
type Services struct {
	Briefs      service.BriefService
	Responses   service.BriefResponseService
	Teams       service.TeamService
	Questions   service.QuestionService
	Assessors   service.AssessorService
	Evidence    service.EvidenceService
	CaseStudies service.CaseStudyService
	Domains     service.DomainService
	Suppliers   service.SupplierService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Health routes are public; everything else passes through Identity.
func RegisterRoutes(app *fiber.App, db *sql.DB, users middleware.UserFinder, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	var (
		anyone   = middleware.RequireRole()
		buyer    = middleware.RequireRole(model.RoleBuyer)
		supplier = middleware.RequireRole(model.RoleSupplier)
		admin    = middleware.RequireRole(model.RoleAdmin)
	)

	api := app.Group("", middleware.Identity(users), middleware.NoStore())

	// briefs
	api.Get("/brief/:id", GetBrief(svc.Briefs))
	api.Get("/brief/:id/user-status", anyone, BriefUserStatus(svc.Briefs))
	api.Get("/brief/:id/sellers", buyer, BriefSellers(svc.Briefs))
	api.Post("/brief/:id/sellers/notify", buyer, NotifySellers(svc.Briefs))
	api.Get("/briefs", middleware.RequireRole(model.RoleBuyer, model.RoleAdmin), ListBriefs(svc.Briefs))
	api.Post("/briefs", buyer, CreateBrief(svc.Briefs))
	api.Get("/briefs/:id", buyer, GetBrief(svc.Briefs))
	api.Patch("/briefs/:id", buyer, UpdateBrief(svc.Briefs))
	api.Post("/briefs/:id/publish", buyer, PublishBrief(svc.Briefs))
	api.Get("/buyer/dashboard", buyer, BuyerDashboard(svc.Briefs))

	// questions and assessors
	api.Get("/brief/:id/questions", buyer, ListQuestions(svc.Questions))
	api.Get("/brief/:id/question", buyer, GetQuestion(svc.Questions))
	api.Get("/brief/:id/answers", anyone, ListAnswers(svc.Questions))
	api.Post("/brief/:id/answers", buyer, PublishAnswer(svc.Questions))
	api.Get("/brief/:id/assessors", buyer, ListAssessors(svc.Assessors))
	api.Post("/brief/:id/assessors", buyer, AddAssessors(svc.Assessors))

	// brief responses
	api.Get("/brief/:id/respond", supplier, CanRespond(svc.Responses))
	api.Post("/brief/:id/respond", supplier, CreateBriefResponse(svc.Responses))
	api.Get("/brief/:id/responses", supplier, ListBriefResponses(svc.Responses))
	api.Post("/brief/:id/respond/documents/:supplier_code/:slug", supplier, UploadResponseDocument(svc.Responses))
	api.Get("/brief/:id/respond/documents/:supplier_code/:slug",
		middleware.RequireRole(model.RoleBuyer, model.RoleSupplier), DownloadResponseDocument(svc.Responses, svc.Teams))
	api.Get("/brief-responses", supplier, ListSupplierResponses(svc.Responses))
	api.Get("/brief-response/:id", supplier, GetBriefResponse(svc.Responses))
	api.Post("/brief-response/:id/withdraw", supplier, WithdrawBriefResponse(svc.Responses))
	api.Get("/brief-response-contact/:brief_id", supplier, GetResponseContact(svc.Responses))
	api.Put("/brief-response-contact/:brief_id", supplier, UpdateResponseContact(svc.Responses))

	// teams
	api.Post("/team/create", buyer, CreateTeam(svc.Teams))
	api.Get("/team/:id", middleware.RequireRole(model.RoleBuyer, model.RoleAdmin), GetTeam(svc.Teams))
	api.Patch("/team/:id", buyer, UpdateTeam(svc.Teams))
	api.Post("/team/:id/complete", buyer, CompleteTeam(svc.Teams))

	// assessments
	api.Get("/evidence", admin, ListEvidence(svc.Evidence))
	api.Get("/evidence/submitted", admin, SubmittedEvidence(svc.Evidence))
	api.Get("/evidence/:id", admin, GetEvidence(svc.Evidence))
	api.Delete("/evidence/:id", supplier, DeleteEvidence(svc.Evidence))
	api.Get("/case-studies/unassessed", admin, UnassessedCaseStudies(svc.CaseStudies))
	api.Get("/case-studies/:id/assessments", admin, CaseStudyAssessments(svc.CaseStudies))
	api.Post("/case-studies/:id/assessments", admin, CreateCaseStudyAssessment(svc.CaseStudies))
	api.Put("/case-study-assessments/:id", admin, UpdateCaseStudyAssessment(svc.CaseStudies))
	api.Delete("/case-study-assessments/:id", admin, DeleteCaseStudyAssessment(svc.CaseStudies))

	// domains and suppliers
	api.Get("/domain/:name_or_id", GetDomain(svc.Domains))
	api.Get("/framework/:slug", GetFramework(svc.Domains))
	api.Get("/suppliers", anyone, ListSuppliers(svc.Suppliers))
	api.Get("/suppliers/abn/:abn/used", anyone, ABNUsed(svc.Suppliers))
	api.Get("/suppliers/abn/:abn/lookup", anyone, ABNLookup(svc.Suppliers))
	api.Get("/suppliers/:code", anyone, GetSupplier(svc.Suppliers))
	api.Get("/suppliers/:code/messages", middleware.RequireRole(model.RoleSupplier, model.RoleAdmin), SupplierMessages(svc.Suppliers))
}
