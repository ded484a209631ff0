// File: /controllers/event_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventhub-api/middleware"
	"eventhub-api/services"
	"eventhub-api/utils"
)

type EventController struct {
	events *services.EventService
	rsvps  *services.RSVPService
	log    *logrus.Entry
}

func NewEventController(events *services.EventService, rsvps *services.RSVPService, l *logrus.Logger) *EventController {
	return &EventController{
		events: events,
		rsvps:  rsvps,
		log:    l.WithField("from", "event-controller"),
	}
}

// EventForm is the submitted event form. MaxParticipants is kept as text so
// an empty field means unlimited.
type EventForm struct {
	Name            string `form:"name" json:"name" binding:"required,max=200"`
	Description     string `form:"description" json:"description" binding:"required"`
	Date            string `form:"date" json:"date" binding:"required"`
	Time            string `form:"time" json:"time" binding:"required"`
	Location        string `form:"location" json:"location" binding:"required,max=200"`
	CategoryID      string `form:"category_id" json:"category_id" binding:"required"`
	MaxParticipants string `form:"max_participants" json:"max_participants"`
}

func (f EventForm) input() (services.EventInput, error) {
	in := services.EventInput{
		Name:        f.Name,
		Description: f.Description,
		Date:        f.Date,
		Time:        f.Time,
		Location:    f.Location,
		CategoryID:  f.CategoryID,
	}
	if raw := strings.TrimSpace(f.MaxParticipants); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("%w: max participants must be a whole number", services.ErrValidation)
		}
		in.MaxParticipants = &n
	}
	return in, nil
}

func eventPath(id string) string {
	return "/events/" + id
}

func (ec *EventController) GetEvents(c *gin.Context) {
	events, err := ec.events.List(c.Request.Context())
	if err != nil {
		renderError(c, ec.log, err)
		return
	}
	utils.SendPage(c, "events/event_list", gin.H{"events": events})
}

func (ec *EventController) GetEvent(c *gin.Context) {
	viewer, _ := middleware.CurrentUser(c)

	detail, err := ec.events.Detail(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		renderError(c, ec.log, err)
		return
	}
	utils.SendPage(c, "events/event_detail", detail)
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var form EventForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RedirectWithFlash(c, utils.FlashError, "Please fill in all required fields.", "/events")
		return
	}
	in, err := form.input()
	if err != nil {
		redirectWithError(c, ec.log, err, "/events")
		return
	}

	event, err := ec.events.Create(c.Request.Context(), user, in)
	if err != nil {
		redirectWithError(c, ec.log, err, "/events")
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Event created successfully!", eventPath(event.ID))
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	var form EventForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RedirectWithFlash(c, utils.FlashError, "Please fill in all required fields.", eventPath(id))
		return
	}
	in, err := form.input()
	if err != nil {
		redirectWithError(c, ec.log, err, eventPath(id))
		return
	}

	if _, err := ec.events.Update(c.Request.Context(), user, id, in); err != nil {
		if errors.Is(err, services.ErrAuthorization) {
			utils.RedirectWithFlash(c, utils.FlashError, "You can only edit events you created.", eventPath(id))
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			redirectWithError(c, ec.log, err, "/events")
			return
		}
		redirectWithError(c, ec.log, err, eventPath(id))
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Event updated successfully!", eventPath(id))
}

func (ec *EventController) DeleteEvent(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	if _, err := ec.events.Delete(c.Request.Context(), user, id); err != nil {
		if errors.Is(err, services.ErrAuthorization) {
			utils.RedirectWithFlash(c, utils.FlashError, "You can only delete events you created.", eventPath(id))
			return
		}
		redirectWithError(c, ec.log, err, "/events")
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Event deleted successfully!", "/events")
}

func (ec *EventController) RSVP(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	result, err := ec.rsvps.Submit(c.Request.Context(), user, id, c.PostForm("notes"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			redirectWithError(c, ec.log, err, "/events")
			return
		}
		redirectWithError(c, ec.log, err, eventPath(id))
		return
	}

	if result.Created {
		utils.AddFlash(c, utils.FlashSuccess, fmt.Sprintf("You have successfully RSVP'd to %q!", result.Event.Name))
	} else {
		utils.AddFlash(c, utils.FlashSuccess, fmt.Sprintf("Your RSVP for %q has been updated!", result.Event.Name))
	}
	if result.Warning != nil {
		utils.AddFlash(c, utils.FlashWarning, "RSVP recorded but confirmation email could not be sent.")
	}
	c.Redirect(http.StatusSeeOther, eventPath(id))
}

func (ec *EventController) CancelRSVP(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id := c.Param("id")

	_, event, err := ec.rsvps.Cancel(c.Request.Context(), user, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) && !errors.Is(err, services.ErrNothingToCancel) {
			redirectWithError(c, ec.log, err, "/events")
			return
		}
		redirectWithError(c, ec.log, err, eventPath(id))
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, fmt.Sprintf("Your RSVP for %q has been cancelled.", event.Name), eventPath(id))
}

func (ec *EventController) GetParticipants(c *gin.Context) {
	event, rsvps, err := ec.events.Participants(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, ec.log, err)
		return
	}
	utils.SendPage(c, "events/participant_list", gin.H{
		"event": event,
		"rsvps": rsvps,
	})
}
