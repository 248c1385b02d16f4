package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/valyala/fasthttp"
)

const changeStreamKeepAlive = 20 * time.Second

var changeTables = map[string]struct{}{
	db.TableProjects:     {},
	db.TableInstallments: {},
	db.TableExpenses:     {},
	db.TableDailyLogs:    {},
}

var changeActions = map[string]db.ChangeAction{
	"insert": db.ActionInsert,
	"update": db.ActionUpdate,
	"delete": db.ActionDelete,
}

// StreamChanges pushes the current user's change events as server-sent
// events. Query: table, project_id, actions (comma separated).
func (handler *Handler) StreamChanges(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	table := strings.TrimSpace(c.Query("table"))
	if _, ok := changeTables[table]; table != "" && !ok {
		return apiError(c, fiber.StatusBadRequest, "unknown table")
	}
	filter := db.ChangeFilter{UserID: user.ID}
	if raw := strings.TrimSpace(c.Query("project_id")); raw != "" {
		projectID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || projectID == 0 {
			return apiError(c, fiber.StatusBadRequest, "invalid project_id")
		}
		filter.ProjectID = uint(projectID)
	}
	mask, err := parseChangeMask(c.Query("actions"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	subscription := handler.feed.Subscribe(table, filter, mask)
	feed := handler.feed

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(writer *bufio.Writer) {
		defer feed.Unsubscribe(subscription)

		keepAlive := time.NewTicker(changeStreamKeepAlive)
		defer keepAlive.Stop()

		if _, err := fmt.Fprintf(writer, "event: ready\ndata: {\"subscription\":%q}\n\n", subscription.ID); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}

		for {
			select {
			case event, ok := <-subscription.Events:
				if !ok {
					return
				}
				if err := writeChangeEvent(writer, event); err != nil {
					return
				}
			case <-keepAlive.C:
				if _, err := writer.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
			}
			if err := writer.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func writeChangeEvent(writer *bufio.Writer, event db.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer, "event: change\ndata: %s\n\n", payload)
	return err
}

func parseChangeMask(raw string) (db.ChangeAction, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return db.ActionAll, nil
	}

	var mask db.ChangeAction
	for _, part := range strings.Split(raw, ",") {
		action, ok := changeActions[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return 0, fmt.Errorf("unknown action %q", strings.TrimSpace(part))
		}
		mask |= action
	}
	return mask, nil
}
