package handler

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// RoleChecker はメンバーが管理用ロールを持つかを判定する
type RoleChecker interface {
	HasRole(session *discordgo.Session, guildID string, member *discordgo.Member) bool
}

type namedRoleChecker struct {
	name   string
	logger *zap.SugaredLogger
}

// NewRoleChecker はロール名で判定する RoleChecker を返す
func NewRoleChecker(name string, logger *zap.SugaredLogger) RoleChecker {
	return &namedRoleChecker{
		name:   name,
		logger: logger,
	}
}

func (checker *namedRoleChecker) HasRole(session *discordgo.Session, guildID string, member *discordgo.Member) bool {
	if member == nil || len(member.Roles) == 0 {
		return false
	}
	return hasRoleNamed(checker.guildRoles(session, guildID), member.Roles, checker.name)
}

// guildRoles はキャッシュにあればそれを使い、なければAPIから取得する
func (checker *namedRoleChecker) guildRoles(session *discordgo.Session, guildID string) []*discordgo.Role {
	if guild, err := session.State.Guild(guildID); err == nil && len(guild.Roles) > 0 {
		return guild.Roles
	}

	roles, err := session.GuildRoles(guildID)
	if err != nil {
		checker.logger.Warnw("Failed to get guild roles", "guild_id", guildID, "error", err)
		return nil
	}
	return roles
}

func hasRoleNamed(roles []*discordgo.Role, memberRoleIDs []string, name string) bool {
	if name == "" {
		return false
	}
	owned := make(map[string]struct{}, len(memberRoleIDs))
	for _, id := range memberRoleIDs {
		owned[id] = struct{}{}
	}
	for _, role := range roles {
		if role == nil || role.Name != name {
			continue
		}
		if _, ok := owned[role.ID]; ok {
			return true
		}
	}
	return false
}
