package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Owoblo/exam-monitor/internal/config"
	"github.com/Owoblo/exam-monitor/pkg/response"
)

const fallbackSTUN = "stun:stun.l.google.com:19302"

// ICEServer is one entry of an RTCConfiguration iceServers list.
type ICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// ICEHandler serves ICE server configuration to both peers.
type ICEHandler struct {
	iceServers []ICEServer
}

// NewICEHandler creates a new ICE handler. A public STUN server is added
// when none is configured.
func NewICEHandler(cfg []config.ICEServerConfig) *ICEHandler {
	servers := make([]ICEServer, 0, len(cfg)+1)
	hasSTUN := false
	for _, s := range cfg {
		for _, url := range s.URLs {
			if strings.HasPrefix(url, "stun:") || strings.HasPrefix(url, "stuns:") {
				hasSTUN = true
			}
		}
		servers = append(servers, ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	if !hasSTUN {
		servers = append([]ICEServer{{URLs: []string{fallbackSTUN}}}, servers...)
	}

	return &ICEHandler{iceServers: servers}
}

// RegisterRoutes registers the ICE routes.
func (h *ICEHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/signal/ice-servers", h.GetICEServers)
}

func (h *ICEHandler) GetICEServers(c *gin.Context) {
	response.JSON(c, gin.H{"iceServers": h.iceServers})
}
