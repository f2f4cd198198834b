package app

import (
	"github.com/zjrosen/biliterm/internal/keys"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/templates"
)

// homeMarkdown is the page shown while no tab is open. It lists the
// configured bindings, so overrides show up here too.
func homeMarkdown(km keys.KeyMap, rooms []uint64) string {
	data := templates.HomeData{
		OpenRoom: km.OpenRoom.Help().Key,
		Compose:  km.Compose.Help().Key,
		Login:    km.Login.Help().Key,
		Rooms:    rooms,
	}
	for _, group := range km.FullHelp() {
		for _, binding := range group {
			if !binding.Enabled() {
				continue
			}
			h := binding.Help()
			data.Bindings = append(data.Bindings, templates.Binding{Key: h.Key, Desc: h.Desc})
		}
	}

	md, err := templates.Home(data)
	if err != nil {
		log.ErrorErr(log.CatUI, "home page template failed", err)
		return "# biliterm\n"
	}
	return md
}
