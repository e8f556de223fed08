package main

import (
	"github.com/archivekeep/rosettavcs/pkg/marking"
	"github.com/archivekeep/rosettavcs/pkg/roster"
)

// rosterPair bundles a loaded (roster, marking) pair, the shape every
// subcommand reads from a stored roster file.
type rosterPair struct {
	roster  *roster.Roster
	marking marking.Map
}
