package activity

import (
	"github.com/bwmarrin/discordgo"
)

type voiceTransition string

const (
	voiceNone     voiceTransition = "none"
	voiceJoined   voiceTransition = "join"
	voiceLeft     voiceTransition = "leave"
	voiceSwitched voiceTransition = "switch"
)

// countsForPoints reports whether a message is ordinary guild chat from a person
func countsForPoints(m *discordgo.Message) bool {
	if m == nil || m.Author == nil || m.Author.Bot {
		return false
	}
	// direct messages carry no guild
	if m.GuildID == "" {
		return false
	}
	return m.Type == discordgo.MessageTypeDefault || m.Type == discordgo.MessageTypeReply
}

// classifyVoice compares the previous and current channel of a voice update.
// Mute and deafen toggles keep the channel and classify as none.
func classifyVoice(v *discordgo.VoiceStateUpdate) voiceTransition {
	before := ""
	if v.BeforeUpdate != nil {
		before = v.BeforeUpdate.ChannelID
	}
	after := v.ChannelID

	switch {
	case before == "" && after != "":
		return voiceJoined
	case before != "" && after == "":
		return voiceLeft
	case before != "" && before != after:
		return voiceSwitched
	}
	return voiceNone
}
