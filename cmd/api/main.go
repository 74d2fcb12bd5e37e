// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/aws/aws-sdk-go/aws"
    "github.com/aws/aws-sdk-go/aws/session"
    "github.com/go-redis/redis/v8"
    "github.com/gorilla/mux"
    "github.com/jmoiron/sqlx"
    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    // Internal packages
    "github.com/peercircle/peercircle-backend/internal/auth"
    "github.com/peercircle/peercircle-backend/internal/common/database"
    "github.com/peercircle/peercircle-backend/internal/config"
    "github.com/peercircle/peercircle-backend/internal/matching"
    notifications "github.com/peercircle/peercircle-backend/internal/notification"
    "github.com/peercircle/peercircle-backend/internal/profile"
)

var startTime = time.Now()

func main() {
    log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

    log.Println("========================================")
    log.Println("🚀 Starting PeerCircle API")
    log.Println("========================================")

    // 1. Load environment variables
    log.Println("📁 Step 1: Loading .env file...")
    if err := godotenv.Load(); err != nil {
        log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
    } else {
        log.Println("✅ .env file loaded successfully")
    }

    // 2. Load configuration
    log.Println("\n📋 Step 2: Loading configuration...")
    cfg := config.Load()
    log.Printf("✅ Configuration loaded")

    // 3. Validate configuration
    log.Println("\n✔️  Step 3: Validating configuration...")
    if err := cfg.Validate(); err != nil {
        log.Fatal("❌ Configuration validation failed:", err)
    }
    log.Println("✅ Configuration is valid")

    // 4. Connect to PostgreSQL
    log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
    db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
    if err != nil {
        log.Fatal("❌ Failed to connect to PostgreSQL:", err)
    }
    defer db.Close()
    log.Println("✅ Connected to PostgreSQL successfully")

    // 5. Connect to Redis (optional)
    log.Println("\n📮 Step 5: Connecting to Redis...")
    var redisClient *redis.Client
    if cfg.RedisURL != "" {
        redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
        if err != nil {
            log.Printf("⚠️  Redis unavailable (%v), continuing without Redis", err)
            redisClient = nil
        } else {
            defer redisClient.Close()
            log.Println("✅ Connected to Redis successfully")
        }
    } else {
        log.Println("⚠️  Redis URL not configured, skipping Redis connection")
    }

    // 6. Run database migrations
    log.Println("\n🔨 Step 6: Running database migrations...")
    if err := runMigrations(db); err != nil {
        log.Fatal("❌ Failed to run migrations: ", err)
    }
    log.Println("✅ Database migrations completed")

    sqlxDB := sqlx.NewDb(db, "postgres")

    // 7. Initialize Auth system
    log.Println("\n🔐 Step 7: Initializing authentication system...")
    authRepo := auth.NewRepository(sqlxDB)
    authService := auth.NewService(authRepo, cfg)
    authHandler := auth.NewHandler(authService)
    authMiddleware := auth.NewMiddleware(authService)
    log.Println("✅ Authentication system initialized")

    // 8. Initialize Profile system
    log.Println("\n👤 Step 8: Initializing Profile system...")
    profileRepo := profile.NewRepository(sqlxDB)
    profileService := profile.NewService(profileRepo)
    profileHandler := profile.NewHandler(profileService)
    log.Println("✅ Profile system initialized")

    // 9. Initialize Notifications module
    log.Println("\n🔔 Step 9: Initializing Notifications module...")
    notificationsRepo := notifications.NewRepository(sqlxDB)

    var notifEmailService notifications.EmailService
    if cfg.EnableEmailNotifications {
        notifEmailService, err = notifications.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom)
        if err != nil {
            log.Printf("⚠️  Failed to initialize SendGrid: %v, using mock", err)
            notifEmailService = notifications.NewMockEmailService()
        } else {
            log.Println("   ✅ SendGrid email service initialized")
        }
    } else {
        notifEmailService = notifications.NewMockEmailService()
        log.Println("   📝 Using mock email service (development mode)")
    }

    var notifSmsService notifications.SMSService
    if cfg.EnableSMSNotifications {
        notifSmsService, err = notifications.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
        if err != nil {
            log.Printf("⚠️  Failed to initialize Twilio: %v, using mock", err)
            notifSmsService = notifications.NewMockSMSService()
        } else {
            log.Println("   ✅ Twilio SMS service initialized")
        }
    } else {
        notifSmsService = notifications.NewMockSMSService()
        log.Println("   📝 Using mock SMS service (development mode)")
    }

    var notifPushService notifications.PushService
    if cfg.EnablePushNotifications {
        notifPushService, err = notifications.NewFCMPushService(
            context.Background(),
            os.Getenv("FIREBASE_CREDENTIALS_PATH"),
            os.Getenv("FIREBASE_CREDENTIALS_JSON"),
        )
        if err != nil {
            log.Printf("⚠️  Failed to initialize FCM: %v, using mock", err)
            notifPushService = notifications.NewMockPushService()
        } else {
            log.Println("   ✅ FCM push service initialized")
        }
    } else {
        notifPushService = notifications.NewMockPushService()
        log.Println("   📝 Using mock push service (development mode)")
    }

    notificationsService := notifications.NewService(notificationsRepo, notifEmailService, notifSmsService, notifPushService)
    notificationsHandler := notifications.NewHandler(notificationsRepo)
    log.Println("✅ Notifications module initialized")

    // 10. Initialize Matching engine
    log.Println("\n🤝 Step 10: Initializing Matching engine...")
    matchingConfig := matching.Config{
        TargetGroupSize:     cfg.MatchTargetGroupSize,
        MinGroupSize:        cfg.MatchMinGroupSize,
        MaxGroupSize:        cfg.MatchMaxGroupSize,
        AllowOversizeGroups: cfg.MatchAllowOversize,
        SpecialtyWeight:     cfg.MatchSpecialtyWeight,
        LocationWeight:      cfg.MatchLocationWeight,
        InterestWeight:      cfg.MatchInterestWeight,
        AvailabilityWeight:  cfg.MatchAvailabilityWeight,
        GenderWeight:        cfg.MatchGenderWeight,
        SpecialtyPolicy:     cfg.MatchSpecialtyPolicy,
        CooldownMode:        cfg.MatchCooldownMode,
        CooldownWeeks:       cfg.MatchCooldownWeeks,
        CooldownPenalty:     cfg.MatchCooldownPenalty,
        MaxSwapPasses:       cfg.MatchMaxSwapPasses,
        ScoreWorkers:        cfg.MatchScoreWorkers,
    }

    // The engine refuses to start with an inconsistent configuration
    matchingEngine, err := matching.NewEngine(matchingConfig)
    if err != nil {
        log.Fatal("❌ Invalid matching configuration: ", err)
    }

    matchingRepo := matching.NewPostgresRepository(sqlxDB)

    var runArchiver matching.RunArchiver
    if cfg.ArchiveEnabled {
        awsSession, err := session.NewSession(&aws.Config{
            Region: aws.String(cfg.AWSRegion),
        })
        if err != nil {
            log.Printf("⚠️  AWS session creation failed: %v, run archiving disabled", err)
        } else {
            runArchiver = matching.NewS3RunArchiver(awsSession, cfg.ArchiveBucket)
            log.Println("   ✅ S3 run archiving enabled")
        }
    }

    matchingHub := matching.NewHub()
    go matchingHub.Run()
    log.Println("   ✅ WebSocket hub started")

    matchingService := matching.NewService(
        matchingRepo,
        matchingEngine,
        matchingConfig,
        redisClient,
        notificationsService,
        runArchiver,
        matchingHub,
    )

    matchingAdmin := matching.NewAdminService(matchingRepo)
    matchingHandler := matching.NewHandler(matchingService, matchingAdmin, matchingHub)
    log.Println("✅ Matching engine initialized")

    // 11. Setup routes
    log.Println("\n🛣️  Step 11: Setting up routes...")
    router := mux.NewRouter()

    router.HandleFunc("/health", healthCheck).Methods("GET")
    router.Handle("/metrics", promhttp.Handler()).Methods("GET")

    auth.RegisterRoutes(router, authHandler, authMiddleware)
    log.Println("   ✅ Auth routes registered")

    profile.RegisterRoutes(router, profileHandler, authMiddleware)
    log.Println("   ✅ Profile routes registered")

    notifications.RegisterRoutes(router, notificationsHandler, authMiddleware)
    log.Println("   ✅ Notification routes registered")

    matching.RegisterRoutes(router, matchingHandler, authMiddleware)
    log.Println("   ✅ Matching routes registered")

    router.Use(loggingMiddleware)
    router.Use(corsMiddleware)

    // 12. Start the weekly matching scheduler
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    if cfg.MatchScheduleEnabled {
        scheduler := matching.NewScheduler(matchingService, cfg.MatchScheduleDay, cfg.MatchScheduleHour, cfg.MatchScheduleMinute)
        scheduler.Start(ctx)
        log.Printf("\n⏰ Step 12: Weekly matching scheduled for %s %02d:%02d",
            cfg.MatchScheduleDay, cfg.MatchScheduleHour, cfg.MatchScheduleMinute)
    } else {
        log.Println("\n⏰ Step 12: Weekly matching scheduler disabled, admin trigger only")
    }

    // 13. Create and start HTTP server
    srv := &http.Server{
        Addr:         fmt.Sprintf(":%s", cfg.Port),
        Handler:      router,
        ReadTimeout:  15 * time.Second,
        WriteTimeout: 15 * time.Second,
        IdleTimeout:  60 * time.Second,
    }

    go func() {
        log.Println("\n========================================")
        log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
        log.Printf("🌍 Environment: %s", cfg.Environment)
        log.Println("========================================")

        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal("❌ Failed to start server:", err)
        }
    }()

    // Wait for interrupt signal
    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit

    log.Println("\n⚠️  Shutdown signal received...")
    cancel()

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer shutdownCancel()

    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Fatal("❌ Server forced to shutdown:", err)
    }

    log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
    response := map[string]interface{}{
        "status":    "healthy",
        "timestamp": time.Now().Format(time.RFC3339),
        "uptime":    time.Since(startTime).String(),
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()

        wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
        next.ServeHTTP(wrapped, r)

        log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
    })
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
    http.ResponseWriter
    statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
    rw.statusCode = code
    rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

        if r.Method == "OPTIONS" {
            w.WriteHeader(http.StatusOK)
            return
        }

        next.ServeHTTP(w, r)
    })
}

// runMigrations executes database migrations
func runMigrations(db *sql.DB) error {
    migrations := []string{
        // Users table
        `CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email VARCHAR(255) UNIQUE NOT NULL,
            username VARCHAR(100) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            display_name VARCHAR(100),
            gender VARCHAR(20),
            birth_date DATE,
            phone VARCHAR(20),
            is_verified BOOLEAN DEFAULT FALSE,
            is_admin BOOLEAN DEFAULT FALSE,
            is_banned BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

        // Matching profiles
        `CREATE TABLE IF NOT EXISTS matching_profiles (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
            display_name VARCHAR(100) NOT NULL DEFAULT '',
            bio TEXT,
            specialty VARCHAR(100),
            city VARCHAR(100),
            gender VARCHAR(20) NOT NULL DEFAULT 'other',
            preferred_gender VARCHAR(20),
            activity_level VARCHAR(20),
            conversation_style VARCHAR(20),
            onboarding_complete BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

        // Subscriptions gate entry to the weekly pool
        `CREATE TABLE IF NOT EXISTS subscriptions (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            plan VARCHAR(50) NOT NULL DEFAULT 'standard',
            status VARCHAR(20) NOT NULL DEFAULT 'active',
            started_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            expires_at TIMESTAMP WITH TIME ZONE
        )`,

        // Interest tags, one row per tag
        `CREATE TABLE IF NOT EXISTS user_interests (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            kind VARCHAR(20) NOT NULL,
            tag VARCHAR(50) NOT NULL,
            CONSTRAINT unique_user_interest UNIQUE(user_id, kind, tag)
        )`,

        // Weekly availability slots
        `CREATE TABLE IF NOT EXISTS user_availability (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            slot VARCHAR(40) NOT NULL,
            CONSTRAINT unique_user_slot UNIQUE(user_id, slot)
        )`,

        // Conversations back each formed group
        `CREATE TABLE IF NOT EXISTS conversations (
            id SERIAL PRIMARY KEY,
            type VARCHAR(20) DEFAULT 'group',
            name VARCHAR(100),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

        `CREATE TABLE IF NOT EXISTS conversation_participants (
            id SERIAL PRIMARY KEY,
            conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            joined_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT unique_conversation_participant UNIQUE(conversation_id, user_id)
        )`,

        // Matching run log
        `CREATE TABLE IF NOT EXISTS matching_runs (
            id UUID PRIMARY KEY,
            week VARCHAR(10) NOT NULL,
            trigger VARCHAR(20) NOT NULL,
            pool_size INTEGER NOT NULL DEFAULT 0,
            eligible_users INTEGER NOT NULL DEFAULT 0,
            groups_formed INTEGER NOT NULL DEFAULT 0,
            users_matched INTEGER NOT NULL DEFAULT 0,
            users_unmatched INTEGER NOT NULL DEFAULT 0,
            average_score DOUBLE PRECISION NOT NULL DEFAULT 0,
            duration_ms BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

        // Formed groups
        `CREATE TABLE IF NOT EXISTS match_groups (
            id UUID PRIMARY KEY,
            run_id UUID NOT NULL REFERENCES matching_runs(id) ON DELETE CASCADE,
            week VARCHAR(10) NOT NULL,
            conversation_id INTEGER REFERENCES conversations(id),
            average_score DOUBLE PRECISION NOT NULL DEFAULT 0,
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            expires_at TIMESTAMP WITH TIME ZONE
        )`,

        `CREATE TABLE IF NOT EXISTS match_group_members (
            id SERIAL PRIMARY KEY,
            group_id UUID NOT NULL REFERENCES match_groups(id) ON DELETE CASCADE,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            position INTEGER NOT NULL DEFAULT 0,
            CONSTRAINT unique_group_member UNIQUE(group_id, user_id)
        )`,

        // Push tokens for group notifications
        `CREATE TABLE IF NOT EXISTS push_tokens (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            platform VARCHAR(20) NOT NULL,
            token TEXT NOT NULL,
            device_id VARCHAR(255) NOT NULL,
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT unique_user_device UNIQUE(user_id, device_id)
        )`,

        // Indexes
        `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
        `CREATE INDEX IF NOT EXISTS idx_matching_profiles_user ON matching_profiles(user_id)`,
        `CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id, status)`,
        `CREATE INDEX IF NOT EXISTS idx_user_interests_user ON user_interests(user_id)`,
        `CREATE INDEX IF NOT EXISTS idx_user_availability_user ON user_availability(user_id)`,
        `CREATE INDEX IF NOT EXISTS idx_match_groups_week ON match_groups(week)`,
        `CREATE INDEX IF NOT EXISTS idx_match_groups_run ON match_groups(run_id)`,
        `CREATE INDEX IF NOT EXISTS idx_group_members_user ON match_group_members(user_id)`,
        `CREATE INDEX IF NOT EXISTS idx_group_members_group ON match_group_members(group_id)`,
        `CREATE INDEX IF NOT EXISTS idx_matching_runs_week ON matching_runs(week)`,
        `CREATE INDEX IF NOT EXISTS idx_push_tokens_user ON push_tokens(user_id)`,
    }

    for i, migration := range migrations {
        if _, err := db.Exec(migration); err != nil {
            return fmt.Errorf("migration %d failed: %w", i+1, err)
        }
    }

    return nil
}
