package model

import "time"

// Wait time categories for pending conversations.
const (
	WaitNormal    = "normal"
	WaitAttention = "attention"
	WaitUrgent    = "urgent"
)

// AgentMetrics aggregates one agent's workload and response times.
type AgentMetrics struct {
	AgentName           string  `json:"agent_name"`
	TotalConversations  int     `json:"total_conversations"`
	ActiveConversations int     `json:"active_conversations"`
	ClosedConversations int     `json:"closed_conversations"`
	TotalMessages       int     `json:"total_messages"`
	SiteCustomers       int     `json:"site_customers"`
	AvgResponseTime     float64 `json:"avg_response_time"`
	ResponseCount       int     `json:"response_count"`
}

// SystemMetrics is the dashboard overview.
type SystemMetrics struct {
	TotalConversations     int            `json:"total_conversations"`
	ActiveConversations    int            `json:"active_conversations"`
	TotalMessages          int            `json:"total_messages"`
	TotalResponseTimes     int            `json:"total_response_times"`
	OverallAvgResponseTime float64        `json:"overall_avg_response_time"`
	Agents                 []AgentMetrics `json:"agents"`
	RecentActivity         []Message      `json:"recent_activity"`
}

// PendingConversation is an active conversation whose last message came from
// the customer and is still waiting for an agent.
type PendingConversation struct {
	Conversation
	LastMessageTime   time.Time `json:"last_message_time"`
	LastSender        string    `json:"last_sender"`
	LastMessageText   string    `json:"last_message_text"`
	WaitTimeMinutes   int       `json:"wait_time_minutes"`
	WaitTimeCategory  string    `json:"wait_time_category"`
	WaitTimeFormatted string    `json:"wait_time_formatted"`
}

// AgentStats is the aggregate block of an agent performance report.
type AgentStats struct {
	AgentName           string  `json:"agent_name"`
	TotalConversations  int     `json:"total_conversations"`
	TotalMessages       int     `json:"total_messages"`
	AvgResponseTime     float64 `json:"avg_response_time"`
	MinResponseTime     float64 `json:"min_response_time"`
	MaxResponseTime     float64 `json:"max_response_time"`
	ResponseCount       int     `json:"response_count"`
	ActiveConversations int     `json:"active_conversations"`
	ClosedConversations int     `json:"closed_conversations"`
}

// ConversationSummary is a conversation with its message count and average
// response time.
type ConversationSummary struct {
	Conversation
	TotalMessages   int     `json:"total_messages"`
	AvgResponseTime float64 `json:"avg_response_time"`
}

// AgentPerformance is the per-agent detail report.
type AgentPerformance struct {
	AgentStats           AgentStats            `json:"agent_stats"`
	PendingConversations []PendingConversation `json:"pending_conversations"`
	RecentConversations  []ConversationSummary `json:"recent_conversations"`
}
