package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/tunebar/internal/shared"
)

func (d *Dispatcher) handleArtist(ctx context.Context, arg string) ([]Result, error) {
	return d.search.Artists(ctx, arg)
}

func (d *Dispatcher) handleAlbum(ctx context.Context, arg string) ([]Result, error) {
	return d.search.Albums(ctx, arg)
}

func (d *Dispatcher) handleTrack(ctx context.Context, arg string) ([]Result, error) {
	return d.search.Tracks(ctx, arg)
}

func (d *Dispatcher) handlePlaylist(ctx context.Context, arg string) ([]Result, error) {
	return d.search.Playlists(ctx, arg)
}

func (d *Dispatcher) handlePlay(ctx context.Context, _ string) ([]Result, error) {
	subtitle := "Resume playback"
	if pb, err := d.session.CurrentPlayback(ctx); err == nil && pb.Track != nil {
		subtitle = pb.Track.Name
	}
	return []Result{d.builder.Single("Play", subtitle, func() error {
		return d.session.Play(context.Background())
	})}, nil
}

func (d *Dispatcher) handlePause(ctx context.Context, _ string) ([]Result, error) {
	subtitle := "Pause playback"
	if pb, err := d.session.CurrentPlayback(ctx); err == nil && pb.Track != nil {
		subtitle = pb.Track.Name
	}
	return []Result{d.builder.Single("Pause", subtitle, func() error {
		return d.session.Pause(context.Background())
	})}, nil
}

func (d *Dispatcher) handleNext(ctx context.Context, _ string) ([]Result, error) {
	return []Result{d.nextResult()}, nil
}

func (d *Dispatcher) handleLast(ctx context.Context, _ string) ([]Result, error) {
	return []Result{d.lastResult()}, nil
}

func (d *Dispatcher) handleMute(ctx context.Context, _ string) ([]Result, error) {
	return []Result{d.muteResult()}, nil
}

func (d *Dispatcher) handleShuffle(ctx context.Context, _ string) ([]Result, error) {
	subtitle := "Toggle shuffle mode"
	if pb, err := d.session.CurrentPlayback(ctx); err == nil {
		subtitle = shuffleState(pb.Shuffled)
	}
	return []Result{d.shuffleResult(subtitle)}, nil
}

// handleVolume serves vol and its volume alias. A valid argument between
// 0 and 100 builds a set-volume result; anything else, including out of
// range values, falls back to showing the current volume.
func (d *Dispatcher) handleVolume(ctx context.Context, arg string) ([]Result, error) {
	if arg != "" {
		if pct, err := strconv.Atoi(arg); err == nil && pct >= 0 && pct <= 100 {
			title := fmt.Sprintf("Set Volume to %d", pct)
			subtitle := fmt.Sprintf("Adjust the active device to %d%%", pct)
			return []Result{d.builder.Single(title, subtitle, func() error {
				return d.session.SetVolume(context.Background(), pct)
			})}, nil
		}
	}
	return []Result{d.volumeResult()}, nil
}

func (d *Dispatcher) handleDevice(ctx context.Context, _ string) ([]Result, error) {
	devices, err := d.session.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return []Result{d.builder.Single("No Devices Found", "Open a Spotify client to make one available", nil)}, nil
	}

	results := make([]Result, len(devices))
	for i, dev := range devices {
		subtitle := dev.Type
		if dev.Active {
			subtitle = dev.Type + " • active"
		}
		id := dev.ID
		results[i] = d.builder.Single(dev.Name, subtitle, func() error {
			return d.session.SelectDevice(context.Background(), id)
		})
	}
	return results, nil
}

func (d *Dispatcher) handleDiag(ctx context.Context, _ string) ([]Result, error) {
	snap := d.metrics.Snapshot()

	user := d.session.UserID()
	if user == "" {
		user = "unknown"
	}

	return []Result{
		d.builder.Single("Plugin Directory", d.pluginDir, nil),
		d.builder.Single("Account", "Connected as "+user, nil),
		d.builder.Single("Dispatches", fmt.Sprintf("%d total, %d suppressed, %d errors", snap.Dispatches, snap.Suppressed, snap.Errors), nil),
		d.builder.Single("Searches", fmt.Sprintf("%d searches, %d fallbacks", snap.Searches, snap.Fallbacks), nil),
		d.builder.Single("Average Latency", snap.AvgLatency.String(), nil),
	}, nil
}

// handleReconnect forces a fresh authorization flow, discarding the
// stored token. The passive reconnect offered on auth failures keeps it.
func (d *Dispatcher) handleReconnect(ctx context.Context, _ string) ([]Result, error) {
	return []Result{d.builder.Single("Reconnect", "Start a fresh authorization flow", func() error {
		return d.session.Reconnect(context.Background(), false)
	})}, nil
}

// nowPlaying composes the status view for blank input: the current track
// plus one entry per transport control, seven in all. No active device
// and no current track are distinct terminal results.
func (d *Dispatcher) nowPlaying(ctx context.Context, _ string) ([]Result, error) {
	pb, err := d.session.CurrentPlayback(ctx)
	switch {
	case errors.Is(err, shared.ErrNoActiveDevice):
		return []Result{d.builder.Single("No Active Device", "Open a Spotify client, then type \"device\" to pick one", nil)}, nil
	case errors.Is(err, shared.ErrNoTrack):
		return []Result{d.builder.Single("Nothing Playing", "Search for a track to start playback", nil)}, nil
	case err != nil:
		return nil, err
	}

	track := *pb.Track
	icon, err := d.session.ResolveArtwork(ctx, track)
	if err != nil {
		icon = ""
	}

	info := d.builder.Playable(track, icon)
	info.Subtitle = fmt.Sprintf("%s • %s", track.Byline, pb.Device.Name)

	toggle := d.builder.Single("Pause", track.Name, func() error {
		return d.session.Pause(context.Background())
	})
	if !pb.Playing {
		toggle = d.builder.Single("Play", track.Name, func() error {
			return d.session.Play(context.Background())
		})
	}

	return []Result{
		info,
		toggle,
		d.nextResult(),
		d.lastResult(),
		d.muteResult(),
		d.shuffleResult(shuffleState(pb.Shuffled)),
		d.volumeResult(),
	}, nil
}

func (d *Dispatcher) nextResult() Result {
	return d.builder.Single("Skip Next", "Play the next track", func() error {
		return d.session.SkipNext(context.Background())
	})
}

func (d *Dispatcher) lastResult() Result {
	return d.builder.Single("Skip Previous", "Play the previous track", func() error {
		return d.session.SkipPrevious(context.Background())
	})
}

func (d *Dispatcher) muteResult() Result {
	return d.builder.Single("Mute", "Toggle mute on the active device", func() error {
		return d.session.ToggleMute(context.Background())
	})
}

func (d *Dispatcher) shuffleResult(subtitle string) Result {
	return d.builder.Single("Shuffle", subtitle, func() error {
		return d.session.ToggleShuffle(context.Background())
	})
}

// volumeResult shows the cached volume; selecting it refreshes the cache
// by polling playback state.
func (d *Dispatcher) volumeResult() Result {
	subtitle := "Current volume unknown"
	if v := d.session.Volume(); v >= 0 {
		subtitle = fmt.Sprintf("Current volume %d%%", v)
	}
	return d.builder.Single("Volume", subtitle, func() error {
		_, err := d.session.CurrentPlayback(context.Background())
		return err
	})
}

func shuffleState(on bool) string {
	if on {
		return "Shuffle is on"
	}
	return "Shuffle is off"
}
