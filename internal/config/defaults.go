package config

import (
	"time"

	"github.com/spf13/viper"
)

// Task names understood by the scheduler.
const (
	TaskDailyDigest    = "daily_digest"
	TaskHistoryPrune   = "history_prune"
	TaskCacheSweep     = "cache_sweep"
	TaskSQLMaintenance = "sql_maintenance"
)

const defaultWelcome = `👋 Welcome to Maintain Bot!

I can help you find YouTube videos based on your preferences and mood.

🎯 *Quick Start:*
Just send me a message like:
• "40-minute coding tutorial"
• "relaxing music for studying"
• "quick tech news"

📋 *Commands:*
/mood - Set your current mood
/profile - Set your interests & preferences
/history - View past recommendations
/saves - View saved content
/trending - Get trending videos
/help - Show all commands

Let's start! What would you like to watch? 🎥`

const defaultHelp = `🤖 *Maintain Bot Commands*

*Getting Recommendations:*
Just send any message describing what you want!
Examples:
• "30 min coding tutorial"
• "funny tech videos"
• "learn JavaScript basics"

*Available Commands:*
/mood <mood> - Set your mood
  Moods: tired, curious, motivated, relaxed, bored, chill

/profile - Setup your preferences
  • Hobbies
  • Interests
  • Languages
  • Favorite YouTubers

/recommend <query> - Get recommendations
/history - View recent recommendations
/saves [list] - View your saves by list
/trending [category] - Get trending content
/stats - View your usage statistics
/mysaves - View your personal saved videos
/myhistory - View your personal history
/notifications - Manage daily digest settings
/link <code> - Link this chat to your web account
/reset - Reset your profile
/help - Show this message`

const defaultProfileStart = `📝 *Setup Your Profile*

Let me know your preferences to get better recommendations!

Reply with your details in this format:

*Hobbies:* programming, gaming
*Interests:* web development, AI
*Languages:* English, Arabic
*YouTubers:* Fireship, ThePrimeagen

Or send /skip to continue without setting profile.`

// setDefaults registers every configuration key with viper so that
// AutomaticEnv can override it and Unmarshal can see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("server.addr", ":3002")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.production", false)
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.recommend_rate_limit", 30)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "maintain.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.8)
	v.SetDefault("gemini.top_k", 40)
	v.SetDefault("gemini.max_output_tokens", 3048)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 2)
	v.SetDefault("gemini.timeout", 60*time.Second)

	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.region_code", "US")
	v.SetDefault("youtube.timeout", 10*time.Second)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.default_count", 5)
	v.SetDefault("telegram.max_count", 10)

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.link_ttl", 10*time.Minute)

	v.SetDefault("scheduler.tasks", map[string]any{
		TaskDailyDigest:    map[string]any{"enabled": true, "schedule": "0 0 9 * * *"},
		TaskHistoryPrune:   map[string]any{"enabled": true, "schedule": "0 30 3 * * *"},
		TaskCacheSweep:     map[string]any{"enabled": true, "schedule": "0 */10 * * * *"},
		TaskSQLMaintenance: map[string]any{"enabled": true, "schedule": "0 0 4 * * 0"},
	})

	v.SetDefault("messages.welcome", defaultWelcome)
	v.SetDefault("messages.help", defaultHelp)
	v.SetDefault("messages.mood_set", "✅ Mood set to: *%s*\n\nNow send me what you'd like to watch!")
	v.SetDefault("messages.invalid_mood", "❌ Invalid mood. Choose from:\n• tired\n• curious\n• motivated\n• relaxed\n• bored\n• chill")
	v.SetDefault("messages.processing", "🔍 Searching for videos...")
	v.SetDefault("messages.no_results", "😕 No recommendations found. Try a different query!")
	v.SetDefault("messages.error", "❌ Oops! Something went wrong. Please try again later.")
	v.SetDefault("messages.profile_start", defaultProfileStart)
	v.SetDefault("messages.profile_saved", "✅ Profile saved successfully!")
	v.SetDefault("messages.profile_reset", "🔄 Profile and preferences have been reset.")
	v.SetDefault("messages.profile_skipped", "Profile setup skipped. You can set it later with /profile")
	v.SetDefault("messages.profile_invalid", "I couldn't understand that format. Please try again or send /skip")
	v.SetDefault("messages.fallback_notice", "ℹ️ Using fallback suggestions (AI unavailable)")
	v.SetDefault("messages.link_success", "🔗 Your Telegram account is now linked to your web account.")
	v.SetDefault("messages.link_invalid", "❌ That link code is invalid or expired. Generate a new one from the web app.")
}
