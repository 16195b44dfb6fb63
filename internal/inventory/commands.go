package inventory

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"kitchenstock/internal/models"
)

// CommandOp is the mutation a text command asks for.
type CommandOp string

const (
	OpAdd      CommandOp = "add"
	OpSubtract CommandOp = "subtract"
	OpSet      CommandOp = "set"
)

// Command is one parsed line of a text command batch.
type Command struct {
	Line     int       `json:"line"`
	Raw      string    `json:"raw"`
	Op       CommandOp `json:"op"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit,omitempty"`
	ItemName string    `json:"item_name"`
}

// RejectedLine is an input line that could not be parsed.
type RejectedLine struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// CommandOutcome pairs a command with what happened when it ran.
type CommandOutcome struct {
	Command Command         `json:"command"`
	Result  *MutationResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

var knownUnits = map[string]string{
	"un": "un", "und": "un", "unid": "un", "unidade": "un", "unidades": "un",
	"kg": "kg", "g": "g", "gr": "g",
	"l": "l", "lt": "l", "litro": "l", "litros": "l", "ml": "ml",
	"cx": "cx", "caixa": "cx", "caixas": "cx",
	"pct": "pct", "pacote": "pct", "pacotes": "pct",
	"dz": "dz", "duzia": "dz",
	"lata": "lata", "latas": "lata",
}

// ParseCommands parses one command per line. Accepted forms:
//
//	+3 tomate     add
//	-2kg batata   subtract
//	=6 batata     set
//	3 un alface   add
//	tomate 3      add
//
// Comma decimals are accepted. Blank lines and lines starting with # are
// ignored; anything else that does not parse is returned as rejected.
func ParseCommands(text string) ([]Command, []RejectedLine) {
	var cmds []Command
	var rejected []RejectedLine
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, reason := parseLine(line)
		if reason != "" {
			rejected = append(rejected, RejectedLine{Line: i + 1, Raw: line, Reason: reason})
			continue
		}
		cmd.Line = i + 1
		cmd.Raw = line
		cmds = append(cmds, cmd)
	}
	return cmds, rejected
}

func parseLine(line string) (Command, string) {
	cmd := Command{Op: OpAdd}
	switch line[0] {
	case '+':
		line = line[1:]
	case '-':
		cmd.Op = OpSubtract
		line = line[1:]
	case '=':
		cmd.Op = OpSet
		line = line[1:]
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return cmd, "expected a quantity and an item name"
	}

	if qty, unit, ok := parseQuantity(fields[0]); ok {
		cmd.Quantity = qty
		cmd.Unit = unit
		rest := fields[1:]
		if cmd.Unit == "" && len(rest) > 1 {
			if u, ok := knownUnits[strings.ToLower(rest[0])]; ok {
				cmd.Unit = u
				rest = rest[1:]
			}
		}
		if len(rest) > 1 && strings.EqualFold(rest[0], "de") {
			rest = rest[1:]
		}
		cmd.ItemName = strings.Join(rest, " ")
	} else {
		last := len(fields) - 1
		unit := ""
		if u, ok := knownUnits[strings.ToLower(fields[last])]; ok && last >= 2 {
			unit = u
			last--
		}
		qty, glued, ok := parseQuantity(fields[last])
		if !ok {
			return cmd, "no quantity found"
		}
		if glued != "" {
			unit = glued
		}
		cmd.Quantity = qty
		cmd.Unit = unit
		cmd.ItemName = strings.Join(fields[:last], " ")
	}

	cmd.ItemName = strings.TrimSpace(cmd.ItemName)
	if cmd.ItemName == "" {
		return cmd, "item name is empty"
	}
	if cmd.Op != OpSet && cmd.Quantity == 0 {
		return cmd, "quantity must not be zero"
	}
	return cmd, ""
}

// parseQuantity reads tokens like "3", "2,5", "1.5kg".
func parseQuantity(tok string) (float64, string, bool) {
	end := 0
	for end < len(tok) && (tok[end] == '.' || tok[end] == ',' || unicode.IsDigit(rune(tok[end]))) {
		end++
	}
	if end == 0 {
		return 0, "", false
	}
	qty, err := strconv.ParseFloat(strings.ReplaceAll(tok[:end], ",", "."), 64)
	if err != nil || qty < 0 {
		return 0, "", false
	}
	suffix := strings.ToLower(tok[end:])
	if suffix == "" {
		return qty, "", true
	}
	unit, ok := knownUnits[suffix]
	if !ok {
		return 0, "", false
	}
	return qty, unit, true
}

// ExecuteCommands applies parsed commands in order. A failing command does
// not stop the batch.
func (e *Engine) ExecuteCommands(ctx context.Context, cmds []Command) []CommandOutcome {
	out := make([]CommandOutcome, 0, len(cmds))
	for _, cmd := range cmds {
		c := change{name: cmd.ItemName, unit: cmd.Unit, reason: "Comando: " + cmd.Raw}
		switch cmd.Op {
		case OpSubtract:
			c.quantity = -cmd.Quantity
			c.logType = models.LogTypeSubtract
		case OpSet:
			c.quantity = cmd.Quantity
			c.absolute = true
			c.logType = models.LogTypeSet
		default:
			c.quantity = cmd.Quantity
			c.logType = models.LogTypeAdd
		}
		res, err := e.apply(ctx, c)
		outcome := CommandOutcome{Command: cmd, Result: res}
		if err != nil {
			outcome.Error = err.Error()
		}
		out = append(out, outcome)
	}
	return out
}
