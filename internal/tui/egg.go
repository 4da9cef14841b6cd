package tui

import "github.com/sweeney/egg-timer/internal/logic"

// eggArt is the picture shown for each egg stage. The yolk firms up as
// the countdown progresses.
var eggArt = map[string]string{
	logic.StageStopped: `
    .-"-.
   /     \
  |       |
  |       |
   \     /
    '-.-'`,
	logic.Stage0: `
    .-"-.
   / ~ ~ \
  | ~(_)~ |
  | ~ ~ ~ |
   \ ~ ~ /
    '-.-'`,
	logic.Stage25: `
    .-"-.
   / ~ ~ \
  |  (o)  |
  | ~ ~ ~ |
   \ ~ ~ /
    '-.-'`,
	logic.Stage50: `
    .-"-.
   /     \
  |  (O)  |
  |  ~ ~  |
   \     /
    '-.-'`,
	logic.Stage75: `
    .-"-.
   /     \
  |  (@)  |
  |       |
   \     /
    '-.-'`,
	logic.Stage100: `
    .-"-.
   /     \
  |  [#]  |
  |       |
   \     /
    '-.-'`,
}

func eggFor(stage string) string {
	if art, ok := eggArt[stage]; ok {
		return art
	}
	return eggArt[logic.StageStopped]
}
