package level

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/rails/grid"
	"github.com/pthm-cable/rails/systems"
)

// yamlLevel mirrors the text layout for tools that prefer structured files.
type yamlLevel struct {
	Name     string       `yaml:"name"`
	Rows     int          `yaml:"rows"`
	Cols     int          `yaml:"cols"`
	Map      []string     `yaml:"map"`
	Switches []yamlSwitch `yaml:"switches"`
	Trains   []yamlTrain  `yaml:"trains"`
}

type yamlSwitch struct {
	Letter  string `yaml:"letter"`
	Mode    string `yaml:"mode"`
	State   string `yaml:"state"`
	Trigger struct {
		Up    int `yaml:"up"`
		Right int `yaml:"right"`
		Down  int `yaml:"down"`
		Left  int `yaml:"left"`
	} `yaml:"trigger"`
}

type yamlTrain struct {
	SpawnTick int            `yaml:"spawn_tick"`
	X         int            `yaml:"x"`
	Y         int            `yaml:"y"`
	Direction grid.Direction `yaml:"direction"`
	Dest      *yamlPoint     `yaml:"dest"`
	Color     int            `yaml:"color"`
}

type yamlPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// ParseYAML decodes a level from its YAML layout.
func ParseYAML(data []byte) (*Level, error) {
	var raw yamlLevel
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing yaml: %v: %w", err, ErrInvalidLevel)
	}

	rows, cols := -1, -1
	if raw.Rows > 0 {
		rows = raw.Rows
	}
	if raw.Cols > 0 {
		cols = raw.Cols
	}
	g, err := buildGrid(raw.Map, rows, cols)
	if err != nil {
		return nil, err
	}

	switches := make([]systems.SwitchSpec, 0, len(raw.Switches))
	for i, ys := range raw.Switches {
		if len(ys.Letter) != 1 || ys.Letter[0] < 'A' || ys.Letter[0] > 'Z' {
			return nil, fmt.Errorf("switch %d: letter %q: %w", i, ys.Letter, ErrInvalidLevel)
		}
		if ys.Mode != "" && ys.Mode != "PER_DIR" && ys.Mode != "per_dir" {
			return nil, fmt.Errorf("switch %s: unsupported mode %q: %w", ys.Letter, ys.Mode, ErrInvalidLevel)
		}
		state := systems.SwitchStraight
		if ys.State != "" {
			if state, err = parseSwitchState(ys.State); err != nil {
				return nil, fmt.Errorf("switch %s: %w", ys.Letter, err)
			}
		}
		sw := systems.SwitchSpec{Letter: ys.Letter[0], State: state}
		sw.K[grid.Up] = ys.Trigger.Up
		sw.K[grid.Right] = ys.Trigger.Right
		sw.K[grid.Down] = ys.Trigger.Down
		sw.K[grid.Left] = ys.Trigger.Left
		for _, k := range sw.K {
			if k < 0 {
				return nil, fmt.Errorf("switch %s: negative trigger count: %w", ys.Letter, ErrInvalidLevel)
			}
		}
		switches = append(switches, sw)
	}

	trains := make([]pendingTrain, len(raw.Trains))
	for i, yt := range raw.Trains {
		pt := pendingTrain{
			line: i + 1,
			spec: systems.TrainSpec{
				SpawnTick: yt.SpawnTick,
				Spawn:     grid.Pt(yt.X, yt.Y),
				Heading:   yt.Direction,
				Color:     yt.Color,
			},
		}
		if yt.Dest != nil {
			pt.spec.Destination = grid.Pt(yt.Dest.X, yt.Dest.Y)
			pt.hasDest = true
		}
		trains[i] = pt
	}

	return assemble(raw.Name, g, switches, trains)
}
