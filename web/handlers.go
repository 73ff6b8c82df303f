package web

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/critterman/skyrim_plugin_browser/status"
	"github.com/critterman/skyrim_plugin_browser/webutils"
)

func HandlerPluginList(w http.ResponseWriter, r *http.Request) {
	if files, err := ServerDirectory.List(); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

func HandlerPlugin(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	plugin, err := ServerDirectory.Plugin(file)
	if err != nil {
		log.Printf("Error getting plugin %q: %v", file, err)
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, plugin)
	}
}

func HandlerPluginHeader(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	plugin, err := ServerDirectory.Plugin(file)
	if err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, plugin.Header)
	}
}

func HandlerPluginWorlds(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	plugin, err := ServerDirectory.Plugin(file)
	if err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, plugin.Worlds)
	}
}

func HandlerPluginCells(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	plugin, err := ServerDirectory.Plugin(file)
	if err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, plugin.Cells)
	}
}

func HandlerPluginDump(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, err := ServerDirectory.Raw(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteBytesFile(w, data, file)
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerStatusWs(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
