// Package coreboard seeds new profiles with a starter communication board.
//
// The vocabulary is bundled with the binary; seeding never requires the
// network and a profile keeps working offline from first launch.
package coreboard
