// File: /controllers/dashboard_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventhub-api/middleware"
	"eventhub-api/models"
	"eventhub-api/services"
	"eventhub-api/utils"
)

var dashboardPaths = map[models.Role]string{
	models.RoleAdmin:       "/dashboard/admin",
	models.RoleOrganizer:   "/dashboard/organizer",
	models.RoleParticipant: "/dashboard/participant",
}

type DashboardController struct {
	auth       *services.AuthService
	dashboards *services.DashboardService
	log        *logrus.Entry
}

func NewDashboardController(auth *services.AuthService, dashboards *services.DashboardService, l *logrus.Logger) *DashboardController {
	return &DashboardController{
		auth:       auth,
		dashboards: dashboards,
		log:        l.WithField("from", "dashboard-controller"),
	}
}

// Dashboard sends the caller to the dashboard of their highest role.
// Superusers without a group land on the admin dashboard.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if _, ok := user.HighestRole(); !ok && user.IsSuperuser {
		c.Redirect(http.StatusFound, dashboardPaths[models.RoleAdmin])
		return
	}

	role, err := dc.auth.EnsureRole(c.Request.Context(), user)
	if err != nil {
		renderError(c, dc.log, err)
		return
	}
	c.Redirect(http.StatusFound, dashboardPaths[role])
}

func (dc *DashboardController) Admin(c *gin.Context) {
	data, err := dc.dashboards.Admin(c.Request.Context())
	if err != nil {
		renderError(c, dc.log, err)
		return
	}
	utils.SendPage(c, "events/admin_dashboard", gin.H{
		"dashboard": data,
		"user_role": models.RoleAdmin.String(),
	})
}

func (dc *DashboardController) Organizer(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	data, err := dc.dashboards.Organizer(c.Request.Context(), user)
	if err != nil {
		renderError(c, dc.log, err)
		return
	}
	utils.SendPage(c, "events/organizer_dashboard", gin.H{
		"dashboard": data,
		"user_role": models.RoleOrganizer.String(),
	})
}

func (dc *DashboardController) Participant(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	data, err := dc.dashboards.Participant(c.Request.Context(), user)
	if err != nil {
		renderError(c, dc.log, err)
		return
	}
	utils.SendPage(c, "events/participant_dashboard", gin.H{
		"dashboard": data,
		"user_role": models.RoleParticipant.String(),
	})
}
