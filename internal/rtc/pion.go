package rtc

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/intervalpli"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// PionEngine implements Engine on pion/webrtc peer connections.
type PionEngine struct {
	api *webrtc.API
	cfg webrtc.Configuration
}

func NewPionEngine(stunURLs []string) (*PionEngine, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("failed to register codecs: %w", err)
	}

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, fmt.Errorf("failed to register interceptors: %w", err)
	}

	// Ask broadcasters for periodic keyframes so late consumers can decode.
	pli, err := intervalpli.NewReceiverInterceptor()
	if err != nil {
		return nil, fmt.Errorf("failed to create PLI interceptor: %w", err)
	}
	registry.Add(pli)

	return &PionEngine{
		api: webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine), webrtc.WithInterceptorRegistry(registry)),
		cfg: webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{{URLs: stunURLs}},
		},
	}, nil
}

func (e *PionEngine) NewSession() (Session, error) {
	pc, err := e.api.NewPeerConnection(e.cfg)
	if err != nil {
		return nil, err
	}
	return &pionSession{id: uuid.New().String(), pc: pc}, nil
}

type pionSession struct {
	id string
	pc *webrtc.PeerConnection
}

func (s *pionSession) ID() string { return s.id }

func (s *pionSession) SetRemoteDescription(desc SessionDescription) error {
	return s.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.NewSDPType(desc.Type),
		SDP:  desc.SDP,
	})
}

func (s *pionSession) CreateAnswer() (SessionDescription, error) {
	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return SessionDescription{}, err
	}

	// The answer travels over a single HTTP response, so there is no
	// candidate trickle: wait for gathering before handing it back.
	gatherComplete := webrtc.GatheringCompletePromise(s.pc)
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return SessionDescription{}, err
	}
	<-gatherComplete

	local := s.pc.LocalDescription()
	return SessionDescription{Type: local.Type.String(), SDP: local.SDP}, nil
}

func (s *pionSession) AddTrack(t Track) error {
	local, ok := t.(webrtc.TrackLocal)
	if !ok {
		return fmt.Errorf("track %s is not a local track", t.ID())
	}
	_, err := s.pc.AddTrack(local)
	return err
}

func (s *pionSession) OnTrack(fn func(Track)) {
	s.pc.OnTrack(func(remote *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		local, err := webrtc.NewTrackLocalStaticRTP(remote.Codec().RTPCodecCapability, remote.ID(), remote.StreamID())
		if err != nil {
			log.Printf("Failed to create local track for %s: %v", remote.ID(), err)
			return
		}
		fn(local)
		forwardRTP(remote, local)
	})
}

func (s *pionSession) Close() error { return s.pc.Close() }

// forwardRTP pumps packets from the broadcaster's remote track into the
// shared local track until the remote side stops.
func forwardRTP(remote *webrtc.TrackRemote, local *webrtc.TrackLocalStaticRTP) {
	buf := make([]byte, 1500)
	pkt := &rtp.Packet{}

	for {
		n, _, err := remote.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Failed to read from remote track %s: %v", remote.ID(), err)
			}
			return
		}

		if err := pkt.Unmarshal(buf[:n]); err != nil {
			log.Printf("Failed to unmarshal incoming RTP packet: %v", err)
			return
		}

		pkt.Extension = false
		pkt.Extensions = nil

		if err := local.WriteRTP(pkt); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			return
		}
	}
}
