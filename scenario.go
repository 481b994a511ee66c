package stages

import (
	"encoding/json"
	"fmt"
	"time"
)

// scenarioStep represents a single action in a scenario script.
type scenarioStep struct {
	Action  string  `json:"action"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Count   int     `json:"count,omitempty"`
	FPS     float64 `json:"fps,omitempty"`
	Renders int     `json:"renders,omitempty"`
	Objects int     `json:"objects,omitempty"`
	Tier    string  `json:"tier,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

// scenarioScript is the top-level JSON structure for a scenario.
type scenarioScript struct {
	Steps []scenarioStep `json:"steps"`
}

// ScenarioPoint is the result of a "pointer" step.
type ScenarioPoint struct {
	ClientX, ClientY float64
	Stage            StageCoordinates
	OK               bool
}

// Scenario replays a scripted sequence of window resizes, frames at a given
// frame rate, tier overrides and pointer positions against an Engine, using
// its own clock so runs are deterministic.
//
// Supported actions:
//
//	resize   width, height      resize the scenario window
//	frames   count, fps         render count frames at fps (renders/objects optional)
//	tier     tier               force a tier ("auto" clears)
//	pointer  x, y               convert a client point, recorded in Points
//	reset                       Engine.Reset
//	dispose                     Engine.Dispose
type Scenario struct {
	steps  []scenarioStep
	now    time.Time
	window *Window
	points []ScenarioPoint
}

// LoadScenario parses a JSON scenario script.
func LoadScenario(jsonData []byte) (*Scenario, error) {
	var script scenarioScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse scenario: no steps")
	}
	for i, st := range script.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse scenario: step %d: %w", i, err)
		}
	}
	return &Scenario{
		steps:  script.Steps,
		now:    time.Unix(0, 0),
		window: NewWindow(0, 0),
	}, nil
}

func (st scenarioStep) validate() error {
	switch st.Action {
	case "resize":
		if st.Width <= 0 || st.Height <= 0 {
			return fmt.Errorf("resize needs positive width and height")
		}
	case "frames":
		if st.Count <= 0 || st.FPS <= 0 {
			return fmt.Errorf("frames needs positive count and fps")
		}
	case "tier":
		if _, err := ParseTier(st.Tier); err != nil {
			return err
		}
	case "pointer", "reset", "dispose":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// Now is the scenario clock. Pass it as Config.Clock for the Engine under
// test.
func (s *Scenario) Now() time.Time {
	return s.now
}

// Window returns the scenario's window container.
func (s *Scenario) Window() *Window {
	return s.window
}

// Points returns the results of all pointer steps in order.
func (s *Scenario) Points() []ScenarioPoint {
	return s.points
}

// Run executes every step against e. The engine's viewport is bound to the
// scenario window on the first resize unless it is already initialized.
func (s *Scenario) Run(e *Engine) {
	for _, st := range s.steps {
		s.step(e, st)
	}
}

func (s *Scenario) step(e *Engine, st scenarioStep) {
	switch st.Action {
	case "resize":
		if !e.Viewport().IsInitialized() {
			s.window.bounds = Rect{Width: st.Width, Height: st.Height}
			e.InitializeTransform(s.window, nil, s.window)
			return
		}
		s.window.Resize(st.Width, st.Height)
	case "frames":
		frame := time.Duration(float64(time.Second) / st.FPS)
		if st.Objects > 0 {
			e.SetObjectCount(st.Objects)
		}
		for i := 0; i < st.Count; i++ {
			for r := 0; r < st.Renders; r++ {
				e.TrackRenderCall()
			}
			e.Update()
			s.now = s.now.Add(frame)
		}
	case "tier":
		t, _ := ParseTier(st.Tier)
		if t == TierAuto {
			e.ClearForcedTier()
		} else {
			e.SetForcedTier(t)
		}
	case "pointer":
		pos, ok := e.TransformCoordinates(st.X, st.Y)
		s.points = append(s.points, ScenarioPoint{ClientX: st.X, ClientY: st.Y, Stage: pos, OK: ok})
	case "reset":
		e.Reset()
	case "dispose":
		e.Dispose()
	}
}
