package service

import (
	"strings"

	"gso-office/backend/internal/model"
)

// AllPersonnelToken 选择单元内全部在职人员
const AllPersonnelToken = "all"

// selectPersonnel 将人员筛选词解析为单元内的人员
//
// 无筛选词或包含 "all" 时返回全部人员。每个筛选词依次尝试：
// 用户 ID → 用户名 → "名 姓" 全名 → 名（单元内仅有一人匹配时才采用），
// 均不大小写敏感。无法解析或有歧义的筛选词原样放入 unresolved。
// 筛选词可用逗号分隔。
func selectPersonnel(users []model.User, filter []string) (selected []model.User, unresolved []string) {
	tokens := splitTokens(filter)
	if len(tokens) == 0 {
		return users, nil
	}
	for _, t := range tokens {
		if strings.EqualFold(t, AllPersonnelToken) {
			return users, nil
		}
	}

	seen := make(map[string]bool)
	for _, t := range tokens {
		u := matchPerson(users, t)
		if u == nil {
			unresolved = append(unresolved, t)
			continue
		}
		if !seen[u.UserID] {
			seen[u.UserID] = true
			selected = append(selected, *u)
		}
	}
	return selected, unresolved
}

func splitTokens(filter []string) []string {
	var tokens []string
	for _, f := range filter {
		for _, part := range strings.Split(f, ",") {
			if p := strings.TrimSpace(part); p != "" {
				tokens = append(tokens, p)
			}
		}
	}
	return tokens
}

func matchPerson(users []model.User, token string) *model.User {
	for i := range users {
		if users[i].UserID == token {
			return &users[i]
		}
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, token) {
			return &users[i]
		}
	}
	for i := range users {
		if strings.EqualFold(users[i].FullName(), token) {
			return &users[i]
		}
	}

	first := strings.Fields(token)
	if len(first) == 0 {
		return nil
	}
	var match *model.User
	for i := range users {
		if strings.EqualFold(strings.TrimSpace(users[i].FirstName), token) ||
			(len(first) == 1 && strings.EqualFold(firstWord(users[i].FirstName), first[0])) {
			if match != nil {
				return nil
			}
			match = &users[i]
		}
	}
	return match
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
