package floof

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the config file loaded when none is given on the
// command line.
const DefaultFilename = "floof.yaml"

const (
	defaultDebounce = 500 * time.Millisecond
	defaultHTTPAddr = "localhost:8030"
	defaultWSAddr   = "localhost:8031"
)

// Config is a parsed floof.yaml: a map of task names to operation sequences,
// plus the directory containing the config file, which anchors all relative
// paths.
type Config struct {
	Dir   string
	Tasks Tasks
}

// Load reads and binds the config file at path. All structural problems —
// unknown operation keys, on-change outside watch, both or neither of
// proxy/serve, references to tasks that do not exist — are reported here,
// before anything runs.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, configErrorf("parsing %s: %s", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, configErrorf("%s is empty", path)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, configErrorf("top level of %s must be a mapping from task names to operation lists", path)
	}

	cfg := &Config{
		Dir:   filepath.Dir(abs),
		Tasks: Tasks{},
	}

	b := &binder{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		nameNode, opsNode := root.Content[i], root.Content[i+1]
		name := nameNode.Value
		if opsNode.Kind != yaml.SequenceNode {
			return nil, configErrorf("line %d: task '%s' must be a list of operations", opsNode.Line, name)
		}
		ops, err := b.bindSequence(opsNode, false)
		if err != nil {
			return nil, err
		}
		cfg.Tasks[name] = ops
	}

	for _, ref := range b.taskRefs {
		if _, ok := cfg.Tasks[ref.name]; !ok {
			return nil, configErrorf("line %d: `run-task` references task '%s', which does not exist", ref.line, ref.name)
		}
	}

	return cfg, nil
}

type taskRef struct {
	name string
	line int
}

type binder struct {
	taskRefs []taskRef
}

func (b *binder) bindSequence(node *yaml.Node, inWatch bool) ([]Operation, error) {
	var ops []Operation
	for _, item := range node.Content {
		op, err := b.bindOperation(item, inWatch)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// bindOperation maps one YAML value to an operation. A bare string is a
// command split on whitespace; a list of strings is a literal argv; a
// mapping with a single operation key selects that operation.
func (b *binder) bindOperation(node *yaml.Node, inWatch bool) (Operation, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return bindSimpleCommand(node)

	case yaml.SequenceNode:
		return bindExplicitCommand(node)

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, configErrorf("line %d: an operation mapping must have exactly one key", node.Line)
		}
		key, value := node.Content[0], node.Content[1]
		switch key.Value {
		case "command":
			return b.bindCommand(value)
		case "watch":
			return b.bindWatch(value)
		case "on-change":
			if !inWatch {
				return nil, configErrorf("line %d: `on-change` can only be used inside the body of a `watch` operation", key.Line)
			}
			inner, err := b.bindOperation(value, inWatch)
			if err != nil {
				return nil, err
			}
			return &onChangeOp{inner: inner}, nil
		case "set-workdir":
			if value.Kind != yaml.ScalarNode || value.Value == "" {
				return nil, configErrorf("line %d: `set-workdir` expects a path", value.Line)
			}
			return &setWorkdirOp{path: value.Value}, nil
		case "http":
			return bindHTTP(value)
		case "reload":
			if value.Tag != "!!null" {
				return nil, configErrorf("line %d: `reload` takes no configuration", value.Line)
			}
			return &reloadOp{}, nil
		case "run-task":
			if value.Kind != yaml.ScalarNode || value.Value == "" {
				return nil, configErrorf("line %d: `run-task` expects a task name", value.Line)
			}
			b.taskRefs = append(b.taskRefs, taskRef{name: value.Value, line: value.Line})
			return &runTaskOp{task: value.Value}, nil
		case "concurrently":
			if value.Kind != yaml.SequenceNode {
				return nil, configErrorf("line %d: `concurrently` expects a list of operations", value.Line)
			}
			children, err := b.bindSequence(value, inWatch)
			if err != nil {
				return nil, err
			}
			return &concurrentlyOp{children: children}, nil
		default:
			return nil, configErrorf("line %d: unknown operation `%s`", key.Line, key.Value)
		}

	default:
		return nil, configErrorf("line %d: expected a string, a list, or a single-key mapping", node.Line)
	}
}

func bindSimpleCommand(node *yaml.Node) (Operation, error) {
	argv := strings.Fields(node.Value)
	if len(argv) == 0 {
		return nil, configErrorf("line %d: empty command is invalid", node.Line)
	}
	return &commandOp{argv: argv}, nil
}

func bindExplicitCommand(node *yaml.Node) (Operation, error) {
	argv, err := stringSeq(node)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, configErrorf("line %d: empty command is invalid", node.Line)
	}
	for _, seg := range argv {
		if strings.TrimSpace(seg) == "" {
			return nil, configErrorf("line %d: segment of command is empty (all segments must be non-empty)", node.Line)
		}
	}
	return &commandOp{argv: argv}, nil
}

// bindCommand handles the explicit `command:` form, whose value may be a
// string, an argv list, or a mapping with `run` and an optional `workdir`.
func (b *binder) bindCommand(node *yaml.Node) (Operation, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return bindSimpleCommand(node)
	case yaml.SequenceNode:
		return bindExplicitCommand(node)
	case yaml.MappingNode:
		var run Operation
		var workdir string
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			switch key.Value {
			case "run":
				op, err := b.bindCommand(value)
				if err != nil {
					return nil, err
				}
				if _, ok := op.(*commandOp); !ok {
					return nil, configErrorf("line %d: `run` expects a command string or argv list", value.Line)
				}
				run = op
			case "workdir":
				workdir = value.Value
			default:
				return nil, configErrorf("line %d: unknown `command` field `%s`", key.Line, key.Value)
			}
		}
		if run == nil {
			return nil, configErrorf("line %d: `command` requires a `run` field", node.Line)
		}
		cmd := run.(*commandOp)
		cmd.workdir = workdir
		return cmd, nil
	default:
		return nil, configErrorf("line %d: `command` expects a string, an argv list, or a mapping", node.Line)
	}
}

func (b *binder) bindWatch(node *yaml.Node) (Operation, error) {
	if node.Kind != yaml.MappingNode {
		return nil, configErrorf("line %d: `watch` expects a mapping", node.Line)
	}

	op := &watchOp{debounce: defaultDebounce}
	var haveRun bool
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "paths":
			paths, err := stringSeq(value)
			if err != nil {
				return nil, err
			}
			op.paths = paths
		case "run":
			if value.Kind != yaml.SequenceNode {
				return nil, configErrorf("line %d: `watch.run` expects a list of operations", value.Line)
			}
			body, err := b.bindSequence(value, true)
			if err != nil {
				return nil, err
			}
			op.body = body
			haveRun = true
		case "debounce":
			var ms int
			if err := value.Decode(&ms); err != nil || ms < 0 {
				return nil, configErrorf("line %d: `watch.debounce` expects a non-negative integer (milliseconds)", value.Line)
			}
			op.debounce = time.Duration(ms) * time.Millisecond
		case "ignore":
			patterns, err := stringSeq(value)
			if err != nil {
				return nil, err
			}
			for _, p := range patterns {
				g, err := glob.Compile(p)
				if err != nil {
					return nil, configErrorf("line %d: invalid ignore pattern '%s': %s", value.Line, p, err)
				}
				op.ignore = append(op.ignore, g)
			}
		default:
			return nil, configErrorf("line %d: unknown `watch` field `%s`", key.Line, key.Value)
		}
	}

	if len(op.paths) == 0 {
		return nil, configErrorf("line %d: `watch` requires a non-empty `paths` list", node.Line)
	}
	if !haveRun {
		return nil, configErrorf("line %d: `watch` requires a `run` list", node.Line)
	}
	return op, nil
}

func bindHTTP(node *yaml.Node) (Operation, error) {
	if node.Kind != yaml.MappingNode {
		return nil, configErrorf("line %d: `http` expects a mapping", node.Line)
	}

	op := &httpOp{addr: defaultHTTPAddr, wsAddr: defaultWSAddr}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode || value.Value == "" {
			return nil, configErrorf("line %d: `http.%s` expects a value", value.Line, key.Value)
		}
		switch key.Value {
		case "proxy":
			op.proxy = value.Value
		case "serve":
			op.serve = value.Value
		case "addr":
			op.addr = value.Value
		case "ws-addr":
			op.wsAddr = value.Value
		default:
			return nil, configErrorf("line %d: unknown `http` field `%s`", key.Line, key.Value)
		}
	}

	if (op.proxy == "") == (op.serve == "") {
		return nil, configErrorf("line %d: `http` requires exactly one of `proxy` and `serve`", node.Line)
	}
	return op, nil
}

func stringSeq(node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, configErrorf("line %d: expected a list of strings", node.Line)
	}
	var out []string
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, configErrorf("line %d: expected a string", item.Line)
		}
		out = append(out, item.Value)
	}
	return out, nil
}
