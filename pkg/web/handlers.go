package web

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/gesture"
	"github.com/facepilot/facepilot/pkg/hub"
	"github.com/facepilot/facepilot/pkg/profile"
)

// handleStatus returns the daemon status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return c.JSON(s.status)
}

// handleState returns the latest expression state
func (s *Server) handleState(c *fiber.Ctx) error {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return c.JSON(s.latest)
}

// handleCalibrate starts a calibration cycle
func (s *Server) handleCalibrate(c *fiber.Ctx) error {
	if s.OnCalibrate == nil {
		return c.Status(500).JSON(fiber.Map{"error": "calibration not configured"})
	}
	s.OnCalibrate()
	s.AddLog("calibration", "Calibration started")
	return c.JSON(fiber.Map{"status": "calibrating"})
}

// handleRelease force-releases all held toggles
func (s *Server) handleRelease(c *fiber.Ctx) error {
	if s.OnRelease == nil {
		return c.Status(500).JSON(fiber.Map{"error": "release not configured"})
	}
	s.OnRelease()
	s.AddLog("action", "Forced release of all held actions")
	return c.JSON(fiber.Map{"status": "released"})
}

// handleListProfiles returns all profiles plus the active id
func (s *Server) handleListProfiles(c *fiber.Ctx) error {
	active := s.manager.Active()
	return c.JSON(fiber.Map{
		"active_id": active.ID,
		"profiles":  s.manager.Profiles(),
	})
}

// CreateProfileRequest is the request body for creating a profile
type CreateProfileRequest struct {
	Name string `json:"name"`
}

// handleCreateProfile creates a new default profile
func (s *Server) handleCreateProfile(c *fiber.Ctx) error {
	var req CreateProfileRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	p, err := s.manager.Create(req.Name)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(p)
}

// handleDeleteProfile deletes a profile
func (s *Server) handleDeleteProfile(c *fiber.Ctx) error {
	err := s.manager.Delete(c.Params("id"))
	switch err {
	case nil:
		return c.JSON(fiber.Map{"status": "deleted"})
	case profile.ErrNotFound:
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case profile.ErrLastProfile:
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}

// handleActivateProfile makes a profile active
func (s *Server) handleActivateProfile(c *fiber.Ctx) error {
	if err := s.manager.Select(c.Params("id")); err != nil {
		if err == profile.ErrNotFound {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "activated"})
}

// RenameProfileRequest is the request body for renaming a profile
type RenameProfileRequest struct {
	Name string `json:"name"`
}

// handleRenameProfile renames a profile
func (s *Server) handleRenameProfile(c *fiber.Ctx) error {
	var req RenameProfileRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	if err := s.manager.Rename(c.Params("id"), req.Name); err != nil {
		if err == profile.ErrNotFound {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "renamed"})
}

// handleUpdateTrigger edits one channel's trigger on the active profile.
// The edit lands at the next frame boundary.
func (s *Server) handleUpdateTrigger(c *fiber.Ctx) error {
	ch := expression.Channel(c.Params("channel"))
	if !validChannel(ch) {
		return c.Status(400).JSON(fiber.Map{"error": "unknown channel"})
	}

	var trig gesture.Trigger
	if err := c.BodyParser(&trig); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid trigger body"})
	}

	s.manager.UpdateTrigger(ch, trig)
	return c.JSON(fiber.Map{"status": "queued"})
}

// handleUpdateGains edits the active profile's gains
func (s *Server) handleUpdateGains(c *fiber.Ctx) error {
	var gains expression.Gains
	if err := c.BodyParser(&gains); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid gains body"})
	}

	s.manager.UpdateGains(gains)
	return c.JSON(fiber.Map{"status": "queued"})
}

// TuningRequest adjusts smoothing and intensity scaling
type TuningRequest struct {
	Smoothing float64 `json:"smoothing"`
	Scaling   string  `json:"scaling"`
}

// handleUpdateTuning edits smoothing and scaling on the active profile
func (s *Server) handleUpdateTuning(c *fiber.Ctx) error {
	var req TuningRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid tuning body"})
	}

	s.manager.QueueEdit(func(p *profile.Profile) {
		p.Smoothing = req.Smoothing
		if req.Scaling != "" {
			p.Scaling = actionScaling(req.Scaling)
		}
	})
	return c.JSON(fiber.Map{"status": "queued"})
}

// handleAddCombo adds a combo to the active profile
func (s *Server) handleAddCombo(c *fiber.Ctx) error {
	var combo gesture.Combo
	if err := c.BodyParser(&combo); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid combo body"})
	}
	if !validChannel(combo.Primary) || !validChannel(combo.Secondary) {
		return c.Status(400).JSON(fiber.Map{"error": "unknown channel"})
	}

	s.manager.AddCombo(combo)
	return c.JSON(fiber.Map{"status": "queued"})
}

// handleRemoveCombo removes the combo at the given index
func (s *Server) handleRemoveCombo(c *fiber.Ctx) error {
	idx, err := strconv.Atoi(c.Params("idx"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid combo index"})
	}

	s.manager.RemoveCombo(idx)
	return c.JSON(fiber.Map{"status": "queued"})
}

// handleToggleCombo flips the enabled flag of the combo at the index
func (s *Server) handleToggleCombo(c *fiber.Ctx) error {
	idx, err := strconv.Atoi(c.Params("idx"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid combo index"})
	}

	s.manager.ToggleCombo(idx)
	return c.JSON(fiber.Map{"status": "queued"})
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStateWS streams expression state updates
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)
	client.Run()
}

// handleLogsWS streams log entries
func (s *Server) handleLogsWS(c *websocket.Conn) {
	client := hub.NewClient(s.logHub, c)
	client.Run()
}

func actionScaling(s string) action.ScalingMode {
	if s == string(action.ScaleFlat) {
		return action.ScaleFlat
	}
	return action.ScaleProportional
}

func validChannel(ch expression.Channel) bool {
	for _, known := range expression.Channels() {
		if ch == known {
			return true
		}
	}
	return false
}
