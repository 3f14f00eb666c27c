package coordinator

import "ctrmdash/internal/domain"

// CommandKind enumerates every user action the coordinator accepts.
type CommandKind int

const (
	CmdSetFilters CommandKind = iota + 1
	CmdResetFilters
	CmdSelectKPI
	CmdApplyRecommendation
	CmdOpenTrade
	CmdCloseTrade
	CmdAdvanceTrade
	CmdToggleForecast
)

var commandNames = map[CommandKind]string{
	CmdSetFilters:          "set_filters",
	CmdResetFilters:        "reset_filters",
	CmdSelectKPI:           "select_kpi",
	CmdApplyRecommendation: "apply_recommendation",
	CmdOpenTrade:           "open_trade",
	CmdCloseTrade:          "close_trade",
	CmdAdvanceTrade:        "advance_trade",
	CmdToggleForecast:      "toggle_forecast",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is one user action. Only the fields of its Kind are read.
type Command struct {
	Kind  CommandKind
	Patch domain.FilterPatch // SetFilters
	KPI   string             // SelectKPI
	ID    int                // ApplyRecommendation, OpenTrade
	Show  bool               // ToggleForecast
}

func SetFilters(p domain.FilterPatch) Command { return Command{Kind: CmdSetFilters, Patch: p} }
func ResetFilters() Command                   { return Command{Kind: CmdResetFilters} }
func SelectKPI(kpi string) Command            { return Command{Kind: CmdSelectKPI, KPI: kpi} }
func ApplyRecommendation(id int) Command      { return Command{Kind: CmdApplyRecommendation, ID: id} }
func OpenTrade(id int) Command                { return Command{Kind: CmdOpenTrade, ID: id} }
func CloseTrade() Command                     { return Command{Kind: CmdCloseTrade} }
func AdvanceTrade() Command                   { return Command{Kind: CmdAdvanceTrade} }
func ToggleForecast(show bool) Command        { return Command{Kind: CmdToggleForecast, Show: show} }
