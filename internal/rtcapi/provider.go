// Package rtcapi builds a single, shared pion webrtc.API over one muxed UDP
// socket, threaded through Server construction rather than reached for as a
// package-level global (spec.md §9, "Global peer-connection provider").
//
// Grounded on original_source/src/server/webrtc/api.rs's RtcApiHandle /
// create_api (SettingEngine + muxed UDP listener) and on bamgate-bamgade's
// PeerConfig.API threading pattern.
package rtcapi

import (
	"fmt"

	"github.com/pion/ice/v4"
	"github.com/pion/webrtc/v4"

	"github.com/1ureka/gameserver/internal/util"
)

// Provider owns one API instance and the ICE server list every Peer Actor
// is configured with.
type Provider struct {
	api        *webrtc.API
	iceServers []webrtc.ICEServer
	mux        ice.UDPMux
}

// New creates a Provider backed by a single muxed UDP socket bound to port
// (0 selects a random free port), so every peer connection shares one
// listening socket instead of pion's default per-connection ephemeral
// sockets.
func New(port int, iceServerURLs []string) (*Provider, error) {
	mux, err := ice.NewMultiUDPMuxFromPort(port, ice.UDPMuxFromPortWithNetworks(ice.NetworkTypeUDP4))
	if err != nil {
		return nil, fmt.Errorf("rtcapi: binding muxed UDP socket: %w", err)
	}

	settingEngine := webrtc.SettingEngine{}
	settingEngine.SetICEUDPMux(mux)

	api := webrtc.NewAPI(webrtc.WithSettingEngine(settingEngine))

	util.LogInfo("rtc provider: muxed UDP socket bound to port %d", port)

	servers := make([]webrtc.ICEServer, len(iceServerURLs))
	for i, url := range iceServerURLs {
		servers[i] = webrtc.ICEServer{URLs: []string{url}}
	}

	return &Provider{api: api, iceServers: servers, mux: mux}, nil
}

// NewPeerConnection creates a PeerConnection using the shared API and ICE
// server configuration.
func (p *Provider) NewPeerConnection() (*webrtc.PeerConnection, error) {
	config := webrtc.Configuration{ICEServers: p.iceServers}
	return p.api.NewPeerConnection(config)
}

// Close releases the shared muxed UDP socket. Call once, after all peer
// connections created from this provider have been closed.
func (p *Provider) Close() error {
	return p.mux.Close()
}
