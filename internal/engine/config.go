package engine

import (
	"github.com/kvolkov/quizroom/internal/protocol"
	"github.com/kvolkov/quizroom/internal/session"
)

// onConfig applies a table-management command issued by the host.
// Every command can reseat the local user, so the local role is
// recomputed from seating afterwards.
func (c *Controller) onConfig(ev protocol.Event) {
	switch ev.Arg(0) {
	case protocol.ConfigAddTable:
		c.addTable()
	case protocol.ConfigDeleteTable:
		c.deleteTable(ev)
	case protocol.ConfigFree:
		c.onTableFree(ev)
	case protocol.ConfigSet:
		c.onTableSet(ev)
	case protocol.ConfigChangeType:
		c.onTableChangeType(ev)
	default:
		return
	}
	c.recomputeRole()
}

func (c *Controller) recomputeRole() {
	switch {
	case c.sess.Showman.Name == c.sess.Name:
		c.sess.Role = session.RoleShowman
	case c.sess.PlayerIndex(c.sess.Name) >= 0:
		c.sess.Role = session.RolePlayer
	default:
		c.sess.Role = session.RoleViewer
	}
}

func (c *Controller) addTable() {
	p := session.NewPlayer()
	p.Name = session.AnyName
	c.sess.Players = append(c.sess.Players, p)
}

func (c *Controller) deleteTable(ev protocol.Event) {
	index, ok := ev.Int(1)
	if !ok || index < 0 || index >= len(c.sess.Players) {
		return
	}

	name := c.sess.Players[index].Name
	if person, ok := c.sess.Persons[name]; ok && !person.IsHuman {
		delete(c.sess.Persons, name)
	}

	c.sess.Players = append(c.sess.Players[:index], c.sess.Players[index+1:]...)
}

func (c *Controller) onTableFree(ev protocol.Event) {
	if ev.Arg(1) == "showman" {
		c.sess.Showman = session.Showman{Name: session.AnyName}
		return
	}
	if p, ok := c.playerArg(ev, 2); ok {
		p.Name = session.AnyName
		p.IsReady = false
	}
}

// onTableSet puts a named account on a seat. The outcome depends on
// who already sits where: bots are replaced in place, persons already
// holding a seat swap with the target, anyone else simply takes it.
func (c *Controller) onTableSet(ev protocol.Event) {
	role := ev.Arg(1)
	replacer := ev.Arg(3)
	if replacer == "" {
		return
	}

	sex := session.SexFemale
	if ev.Plus(4) {
		sex = session.SexMale
	}

	isShowman := role == "showman"
	index := -1
	var target *session.Player
	if !isShowman {
		var ok bool
		index, ok = ev.Int(2)
		if !ok {
			return
		}
		if target, ok = c.sess.PlayerAt(index); !ok {
			return
		}
	}

	occupant := c.sess.Showman.Name
	if !isShowman {
		occupant = target.Name
	}

	// a bot seat is handed straight to the replacement account
	if person, ok := c.sess.Persons[occupant]; ok && !person.IsHuman {
		delete(c.sess.Persons, occupant)
		c.sess.Persons[replacer] = &session.Person{Name: replacer, Sex: sex, IsHuman: false}
		if isShowman {
			c.sess.Showman = session.Showman{Name: replacer, IsHuman: false}
		} else {
			target.Name = replacer
			target.IsHuman = false
			target.IsReady = false
		}
		return
	}

	// the replacer holds the showman seat: the two trade places
	if !isShowman && replacer == c.sess.Showman.Name {
		c.sess.Showman.Name = occupant
		c.sess.Showman.IsReady = false
		target.Name = replacer
		target.IsReady = false
		return
	}

	// the replacer already sits on a player seat
	if from := c.sess.PlayerIndex(replacer); from >= 0 {
		if isShowman {
			c.sess.Players[from].Name = occupant
			c.sess.Players[from].IsReady = false
			c.sess.Showman.Name = replacer
			c.sess.Showman.IsReady = false
		} else if from != index {
			// whole seats swap so scores travel with their owners
			c.sess.Players[from], c.sess.Players[index] = c.sess.Players[index], c.sess.Players[from]
		}
		return
	}

	// plain replacement by an account with no seat
	if _, ok := c.sess.Persons[replacer]; !ok {
		c.sess.Persons[replacer] = &session.Person{Name: replacer, Sex: sex, IsHuman: true}
	}
	if isShowman {
		c.sess.Showman = session.Showman{Name: replacer, IsHuman: true}
	} else {
		target.Name = replacer
		target.IsHuman = true
		target.IsReady = false
	}
}

func (c *Controller) onTableChangeType(ev protocol.Event) {
	isHuman := ev.Plus(3)
	newName := ev.Arg(4)
	if newName == "" {
		return
	}

	sex := session.SexFemale
	if ev.Plus(5) {
		sex = session.SexMale
	}

	var occupant string
	if ev.Arg(1) == "showman" {
		if c.sess.Showman.IsHuman == isHuman {
			return
		}
		occupant = c.sess.Showman.Name
		c.sess.Showman = session.Showman{Name: newName, IsHuman: isHuman}
	} else {
		p, ok := c.playerArg(ev, 2)
		if !ok || p.IsHuman == isHuman {
			return
		}
		occupant = p.Name
		p.Name = newName
		p.IsHuman = isHuman
		p.IsReady = false
	}

	// human->bot registers the bot account; bot->human only removes it,
	// the human arrives with a later CONNECTED
	if person, ok := c.sess.Persons[occupant]; ok && !person.IsHuman {
		delete(c.sess.Persons, occupant)
	}
	if !isHuman {
		c.sess.Persons[newName] = &session.Person{Name: newName, Sex: sex, IsHuman: false}
	}
}
