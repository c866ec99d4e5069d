package terraform

import "strings"

type relayLevel int

const (
	relayDebug relayLevel = iota
	relayInfo
	relayWarn
	relayError
)

// relayRules classifies captured terraform output lines by content. Order
// matters: the first matching fragment wins.
var relayRules = []struct {
	fragment string
	level    relayLevel
}{
	{"Apply complete!", relayInfo},
	{"Destroy complete!", relayInfo},
	{"Error:", relayError},
	{"Warning:", relayWarn},
	{"Plan:", relayInfo},
	{"Refreshing state...", relayDebug},
}

func classifyLine(line string) relayLevel {
	for _, rule := range relayRules {
		if strings.Contains(line, rule.fragment) {
			return rule.level
		}
	}
	return relayDebug
}

// relayOutput replays captured terraform stdout through the structured
// logger so that the significant lines (plan summaries, completion
// banners, errors) surface at an appropriate level.
func (m *Manager) relayOutput(name, stdout string) {
	log := m.log.WithFields(map[string]any{"challenge": name})

	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch classifyLine(line) {
		case relayError:
			log.Error(nil, line)
		case relayWarn:
			log.Warn(line)
		case relayInfo:
			log.Info(line)
		default:
			log.Debug(line)
		}
	}
}
