// Package mobile is the ebitenmobile bind target:
//
//	ebitenmobile bind -target android -javapkg com.milk9111.redroom -o redroom.aar ./mobile
package mobile

import (
	"github.com/hajimehoshi/ebiten/v2/mobile"
	"github.com/milk9111/redroom/config"
	"github.com/milk9111/redroom/game"
)

func init() {
	g, err := game.New(config.Mobile())
	if err != nil {
		panic(err)
	}
	mobile.SetGame(g)
}

// Dummy is exported so the bound library is not empty.
func Dummy() {}
