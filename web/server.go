// Package web exposes parsed plugins over HTTP: JSON views of the
// extraction result, raw file dumps and a websocket status feed.
package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

var ServerDirectory *PluginDir

func StartServer(addr string, d *PluginDir) error {
	ServerDirectory = d

	r := mux.NewRouter()
	r.HandleFunc("/json/plugins", HandlerPluginList)
	r.HandleFunc("/json/plugins/{file}", HandlerPlugin)
	r.HandleFunc("/json/plugins/{file}/header", HandlerPluginHeader)
	r.HandleFunc("/json/plugins/{file}/worlds", HandlerPluginWorlds)
	r.HandleFunc("/json/plugins/{file}/cells", HandlerPluginCells)
	r.HandleFunc("/dump/plugins/{file}", HandlerPluginDump)
	r.HandleFunc("/ws/status", HandlerStatusWs)

	h := handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler()(r))

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
