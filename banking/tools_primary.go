package banking

import (
	"fmt"
	"strings"
	"time"

	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/tool"
)

// PrimaryTools builds the dispatcher's executable tool set: relationship
// manager scheduling. Hand-offs are declared separately on the assistant.
func PrimaryTools(repo *Repository, now func() time.Time) *tool.Set {
	set := tool.NewSet("primary")
	set.Add(newContactRMTool(repo, now))
	return set
}

// newContactRMTool checks existing appointments with the relationship
// manager or books a new one. Scheduling constraints (at least one day
// ahead, no overlap within two hours of an existing slot) come back as
// plain results for the model to relay.
func newContactRMTool(repo *Repository, now func() time.Time) tool.Tool {
	return tool.NewFunctionTool(
		"contact_rm",
		"Check the schedule of appointments with the relationship manager (RM) "+
			"or schedule a new appointment with the RM. Omit appointment_date_time to only list "+
			"existing appointments.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"appointment_date_time": map[string]any{
					"type":        "string",
					"description": "Proposed appointment date and time, format 'YYYY-MM-DD hh:mm:ss'",
				},
			},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ctx := toolCtx.Context()
			userID := toolCtx.UserID()

			appts, err := repo.Appointments(ctx, userID)
			if err != nil {
				return nil, err
			}

			proposed := stringArg(args, "appointment_date_time")
			if proposed == "" {
				if len(appts) == 0 {
					return "The user has no appointment with the relationship manager.", nil
				}
				var b strings.Builder
				b.WriteString("Below are the user's pending appointments with the relationship manager:\n")
				for _, a := range appts {
					fmt.Fprintf(&b, "- On %s, the user made an appointment with the relationship manager on %s.\n",
						a.BookedAt.Format(dateLayout),
						a.ScheduledFor.Format("Monday, January 2, 2006 at 3:04 PM"))
				}
				return b.String(), nil
			}

			when, err := time.ParseInLocation(dateTimeLayout, proposed, time.Local)
			if err != nil {
				return "The appointment date time format is invalid. Please use 'YYYY-MM-DD hh:mm:ss'.", nil
			}

			today := now()
			lead := when.Sub(today)
			if lead < 0 {
				return "You cannot make an appointment in the past. Please select a future date that is at least one day later.", nil
			}
			if lead < 24*time.Hour {
				return "The appointment time must be scheduled at least one day in advance. Please choose a later time.", nil
			}
			for _, a := range appts {
				gap := when.Sub(a.ScheduledFor)
				if gap < 0 {
					gap = -gap
				}
				if gap < 2*time.Hour {
					return fmt.Sprintf(
						"You already have an appointment with your relationship manager on %s. "+
							"Your new appointment must be scheduled at least 2 hours earlier or later than this time.",
						a.ScheduledFor.Format("Monday, January 2, 2006 at 3:04 PM")), nil
				}
			}

			appt := &Appointment{UserID: userID, BookedAt: today, ScheduledFor: when}
			if err := repo.BookAppointment(ctx, appt); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Your new appointment with your relationship manager is scheduled at %s.",
				when.Format("Monday, January 2, 2006 at 3:04 PM")), nil
		},
	)
}
