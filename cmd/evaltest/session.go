package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crystal-mush/softcode/pkg/boltstore"
	"github.com/crystal-mush/softcode/pkg/eval"
	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// session holds one evaluator plus the database it runs against. Lines
// starting with & or @ are harness directives, everything else is
// evaluated as softcode.
type session struct {
	ctx   *eval.EvalContext
	db    *gamedb.Database
	store *boltstore.Store // nil when running in memory
}

const topFlags = eval.EvFCheck | eval.EvEval | eval.EvTop

// seedDatabase builds the minimal world: Room Zero and the Wizard.
func seedDatabase() *gamedb.Database {
	db := gamedb.NewDatabase()
	db.Objects[0] = &gamedb.Object{
		DBRef: 0, Name: "Room Zero",
		Location: gamedb.Nothing, Owner: 1, Parent: gamedb.Nothing,
		Flags: [3]int{int(gamedb.TypeRoom), 0, 0},
	}
	db.Objects[1] = &gamedb.Object{
		DBRef: 1, Name: "Wizard",
		Location: 0, Owner: 1, Parent: gamedb.Nothing,
		Flags: [3]int{int(gamedb.TypePlayer) | gamedb.FlagWizard, 0, 0},
	}
	return db
}

// run handles one input line and returns what should be printed.
func (s *session) run(line string) (string, error) {
	switch {
	case strings.HasPrefix(line, "&"):
		return s.setAttr(line[1:])
	case strings.HasPrefix(strings.ToLower(line), "@function"):
		return s.defineFunction(line[len("@function"):])
	case strings.HasPrefix(strings.ToLower(line), "@set "):
		return s.setFlag(line[len("@set "):])
	case strings.HasPrefix(strings.ToLower(line), "@create "):
		return s.create(strings.TrimSpace(line[len("@create "):]))
	}
	return s.eval(line), nil
}

func (s *session) eval(expr string) string {
	s.ctx.Notifications = nil
	s.ctx.CurrCmd = expr
	return s.ctx.Exec(expr, topFlags, nil)
}

// setAttr handles "&ATTR #obj=value".
func (s *session) setAttr(arg string) (string, error) {
	lhs, value, ok := strings.Cut(arg, "=")
	if !ok {
		return "", fmt.Errorf("usage: &ATTR <object>=<value>")
	}
	name, target, _ := strings.Cut(strings.TrimSpace(lhs), " ")
	obj, err := s.object(target)
	if err != nil {
		return "", err
	}
	num := s.db.DefineAttr(name)
	if value == "" {
		obj.RemoveAttr(num)
	} else {
		obj.SetAttr(num, value)
	}
	if s.store != nil {
		if err := s.store.PutAttrDef(s.db.AttrNames[num]); err != nil {
			return "", err
		}
		if err := s.store.PutObject(obj); err != nil {
			return "", err
		}
		if err := s.store.PutMeta(); err != nil {
			return "", err
		}
	}
	return "Set.", nil
}

// defineFunction handles "@function[/privileged][/preserve] name=#obj/attr".
// An empty right-hand side removes the function.
func (s *session) defineFunction(arg string) (string, error) {
	flags := 0
	if strings.HasPrefix(arg, "/") {
		var switches string
		switches, arg, _ = strings.Cut(arg[1:], " ")
		for _, opt := range strings.Split(switches, "/") {
			switch strings.ToLower(opt) {
			case "privileged", "priv":
				flags |= eval.UfPriv
			case "preserve", "pres":
				flags |= eval.UfPres
			default:
				return "", fmt.Errorf("unknown switch /%s", opt)
			}
		}
	}
	name, target, ok := strings.Cut(strings.TrimSpace(arg), "=")
	if !ok || name == "" {
		return "", fmt.Errorf("usage: @function <name>=<object>/<attr>")
	}
	name = strings.TrimSpace(name)
	if target == "" {
		s.ctx.RemoveUFunction(name)
		if s.store != nil {
			if err := s.store.DeleteUFunction(name); err != nil {
				return "", err
			}
		}
		return "Function removed.", nil
	}
	obj, attr, ok := s.ctx.ResolveObjAttr(target)
	if !ok {
		return "", fmt.Errorf("no such object/attribute %q", target)
	}
	uf := &eval.UFunction{Name: name, Obj: obj, Attr: attr, Flags: flags}
	s.ctx.DefineUFunction(uf)
	if s.store != nil {
		if err := s.store.PutUFunction(uf); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Function %s defined.", uf.Name), nil
}

// setFlag handles "@set #obj=[!]TRACE".
func (s *session) setFlag(arg string) (string, error) {
	target, flag, ok := strings.Cut(arg, "=")
	if !ok {
		return "", fmt.Errorf("usage: @set <object>=[!]<flag>")
	}
	obj, err := s.object(target)
	if err != nil {
		return "", err
	}
	flag = strings.ToUpper(strings.TrimSpace(flag))
	unset := strings.HasPrefix(flag, "!")
	flag = strings.TrimPrefix(flag, "!")

	var bit int
	switch flag {
	case "TRACE":
		bit = gamedb.FlagTrace
	case "WIZARD":
		bit = gamedb.FlagWizard
	default:
		return "", fmt.Errorf("unknown flag %s", flag)
	}
	if unset {
		obj.Flags[0] &^= bit
	} else {
		obj.Flags[0] |= bit
	}
	if s.store != nil {
		if err := s.store.PutObject(obj); err != nil {
			return "", err
		}
	}
	if unset {
		return flag + " cleared.", nil
	}
	return flag + " set.", nil
}

// create handles "@create name", making a thing owned by the player.
func (s *session) create(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("usage: @create <name>")
	}
	ref := gamedb.DBRef(0)
	for {
		if _, ok := s.db.Objects[ref]; !ok {
			break
		}
		ref++
	}
	obj := &gamedb.Object{
		DBRef: ref, Name: name,
		Location: s.ctx.Player, Owner: s.ctx.Player, Parent: gamedb.Nothing,
		Flags: [3]int{int(gamedb.TypeThing), 0, 0},
	}
	s.db.Objects[ref] = obj
	if s.store != nil {
		if err := s.store.PutObject(obj); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s created as object %s.", name, ref), nil
}

func (s *session) object(target string) (*gamedb.Object, error) {
	target = strings.TrimSpace(target)
	ref := s.ctx.ParseDBRef(target)
	if ref == gamedb.Nothing {
		if n, err := strconv.Atoi(target); err == nil {
			ref = gamedb.DBRef(n)
		}
	}
	obj, ok := s.db.Objects[ref]
	if !ok {
		return nil, fmt.Errorf("no such object %q", target)
	}
	return obj, nil
}
