package testutil

// AndroidBuildHCL describes the Android side of the electricity monitoring
// app: one application subproject and three plugin subprojects.
const AndroidBuildHCL = `
build_dir = "../build"

extra {
  kotlin_version = "1.9.22"
}

buildscript {
  repository "google" {}
  repository "maven_central" {}

  plugin "com.android.tools.build:gradle" {
    version = "8.1.0"
  }
  plugin "com.google.gms:google-services" {
    version = "4.4.0"
  }
  plugin "org.jetbrains.kotlin:kotlin-gradle-plugin" {
    version = extra.kotlin_version
    requires = {
      "com.android.tools.build:gradle" = ">= 7.4.0, < 9.0.0"
    }
  }
}

allprojects {
  repository "google" {}
  repository "maven_central" {}
  repository "flutter" {
    url = "https://storage.googleapis.com/download.flutter.io"
  }

  compiler {
    jvm_target  = "11"
    incremental = false
  }
}

subprojects {
  evaluation_depends_on = [":app"]
}

subproject "app" {
  dependencies = ["org.jetbrains.kotlin:kotlin-stdlib-jdk7:${extra.kotlin_version}"]
}

subproject "camera" {}

subproject "maps" {}

subproject "charts" {
  evaluation_depends_on = [":maps"]
}
`
