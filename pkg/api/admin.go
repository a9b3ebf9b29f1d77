package api

import (
	"context"
	"fmt"
)

// AdminStats returns the dashboard counters. Cached.
func (a *API) AdminStats(ctx context.Context) (*AdminStats, error) {
	resp, err := a.get(ctx, "/admin/stats", true)
	if err != nil {
		return nil, err
	}

	var stats AdminStats
	if err := resp.DecodeData(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return &stats, nil
}

// AdminUsers lists every registered user. Cached.
func (a *API) AdminUsers(ctx context.Context) ([]User, error) {
	resp, err := a.get(ctx, "/admin/users", true)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := decodeList(resp.Envelope.Data, "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminInviteCodes lists issued invite codes. Cached.
func (a *API) AdminInviteCodes(ctx context.Context) ([]InviteCode, error) {
	resp, err := a.get(ctx, "/admin/invite-codes", true)
	if err != nil {
		return nil, err
	}

	var codes []InviteCode
	if err := decodeList(resp.Envelope.Data, "codes", &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// GenerateInviteCode issues a new invite code.
func (a *API) GenerateInviteCode(ctx context.Context) (string, error) {
	resp, err := a.post(ctx, "/admin/generateCode", nil)
	if err != nil {
		return "", err
	}

	var data struct {
		Code string `json:"code"`
	}
	if err := resp.DecodeData(&data); err != nil {
		return "", fmt.Errorf("failed to decode invite code: %w", err)
	}
	return data.Code, nil
}
